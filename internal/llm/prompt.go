package llm

import "strings"

// DefaultExtractionPrompt is sent with an upload when the user gives no instructions.
const DefaultExtractionPrompt = "Analyze this image in extreme detail. If it shows a vehicle with damage, " +
	"provide an elaborate, comprehensive assessment of all visible damage including: specific body parts " +
	"affected (hood, fender, bumper, doors, windows, etc.), severity of each damage (minor scratches, " +
	"moderate dents, severe crushing, etc.), paint condition, structural integrity concerns, estimated " +
	"repair complexity, and any safety implications. If it's a document, extract ALL visible text fields " +
	"and values. CRITICAL: For ANY document containing Arabic text - translate EVERYTHING including titles, " +
	"headers, field names, and values. Display each Arabic text element in its original Arabic followed " +
	"immediately by accurate English translation in parentheses. Format as 'Arabic Text (English Translation)'. " +
	"Every single Arabic character, word, phrase, title, header, field name, and value MUST be translated. " +
	"Do not leave any Arabic text untranslated. Provide detailed, professional analysis without code blocks " +
	"or programming syntax."

const userPromptPrefix = "Extract all the fields and values from this document."

// BuildExtractionPrompt returns the instruction text for an upload.
func BuildExtractionPrompt(userPrompt string) string {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return DefaultExtractionPrompt
	}
	return userPromptPrefix + " " + userPrompt
}

// BuildDocumentTextPrompt appends text extracted from a document to the
// instruction, for uploads sent as text instead of an image.
func BuildDocumentTextPrompt(instruction, documentText string) string {
	return instruction + "\n\nDocument text:\n" + documentText
}
