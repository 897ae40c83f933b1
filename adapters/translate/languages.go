package translate

import "fmt"

var languageNames = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fa": "Persian (Farsi)",
	"fr": "French",
	"ru": "Russian",
	"tr": "Turkish",
}

// LanguageName returns a human readable name for a language tag, falling back to the tag itself
func LanguageName(tag string) string {
	if name, ok := languageNames[tag]; ok {
		return name
	}
	return tag
}

// systemPrompt is shared by the chat-style translators
func systemPrompt(source, target string) string {
	return fmt.Sprintf(
		"You translate live %s speech transcripts into %s for on-screen subtitles. "+
			"Reply with the translation only, without quotes, notes or transliteration. "+
			"Keep names as they are and keep the translation short enough to read in a few seconds.",
		LanguageName(source), LanguageName(target))
}
