package parser

import (
	"regexp"
	"strings"

	consts "chat-importer/pkg/constants"
)

// SystemIndicators mark a message as a system notification when found
// anywhere in its content, case-insensitively.
var SystemIndicators = []string{
	"changed the subject",
	"changed this group's icon",
	"changed the group description",
	"added",
	"left",
	"removed",
	"joined using this group's invite link",
	"created group",
	"security code changed",
	"This message was deleted",
	"You deleted this message",
	"Messages and calls are end-to-end encrypted",
	"changed their phone number",
	"is now an admin",
	"Missed voice call",
	"Missed video call",
}

// systemPhrase matches an indicator as whole words. It guards the sender
// capture, which a colon in a system line's body would otherwise fill.
var systemPhrase = indicatorPattern(SystemIndicators)

func indicatorPattern(indicators []string) *regexp.Regexp {
	quoted := make([]string, len(indicators))
	for i, ind := range indicators {
		quoted[i] = regexp.QuoteMeta(ind)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

type MediaPattern struct {
	Category string
	Pattern  *regexp.Regexp
}

const (
	imageExt    = `jpe?g|png|gif|webp|heic|bmp`
	videoExt    = `mp4|mov|3gp|avi|mkv|webm`
	audioExt    = `opus|ogg|m4a|mp3|aac|wav|amr`
	documentExt = `pdf|docx?|xlsx?|pptx?|txt|csv|zip|vcf`
)

func attached(ext string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<attached: ([^>]+\.(?:` + ext + `))>`)
}

func fileAttached(ext string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(\S+\.(?:` + ext + `)) \(file attached\)`)
}

func prefixed(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b((?:` + prefix + `)-[\w.-]*\.[a-z0-9]+)\b`)
}

// MediaPatterns are grouped by category in the order image, video, audio,
// document. The first capture group, when present, is the file name.
var MediaPatterns = []MediaPattern{
	{consts.MediaImage, attached(imageExt)},
	{consts.MediaImage, fileAttached(imageExt)},
	{consts.MediaImage, regexp.MustCompile(`(?i)<?(?:image omitted|Bild weggelassen|imagen omitida|imagem ocultada)>?`)},
	{consts.MediaImage, prefixed(`IMG`)},

	{consts.MediaVideo, attached(videoExt)},
	{consts.MediaVideo, fileAttached(videoExt)},
	{consts.MediaVideo, regexp.MustCompile(`(?i)<?(?:video omitted|Video weggelassen|video omitido|vídeo omitido)>?`)},
	{consts.MediaVideo, prefixed(`VID`)},

	{consts.MediaAudio, attached(audioExt)},
	{consts.MediaAudio, fileAttached(audioExt)},
	{consts.MediaAudio, regexp.MustCompile(`(?i)<?(?:audio omitted|Audio weggelassen|audio omitido|áudio ocultado)>?`)},
	{consts.MediaAudio, prefixed(`PTT|AUD`)},

	{consts.MediaDocument, attached(documentExt)},
	{consts.MediaDocument, fileAttached(documentExt)},
	{consts.MediaDocument, regexp.MustCompile(`(?i)<?(?:document omitted|Dokument weggelassen|documento omitido|documento ocultado)>?`)},
	{consts.MediaDocument, prefixed(`DOC`)},
	{consts.MediaDocument, regexp.MustCompile(`(?i)<attached: ([^>]+)>`)},
	{consts.MediaDocument, regexp.MustCompile(`(?i)<(?:Media omitted|Medien ausgeschlossen|Multimedia omitido|Mídia oculta)>`)},
}

func IsSystemMessage(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range SystemIndicators {
		if strings.Contains(lower, strings.ToLower(ind)) {
			return true
		}
	}
	return false
}

// ClassifyMedia returns the category of the first matching media pattern and
// the captured file name, if any.
func ClassifyMedia(text string) (category, filename string, ok bool) {
	for _, mp := range MediaPatterns {
		m := mp.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			filename = strings.TrimSpace(m[1])
		}
		return mp.Category, filename, true
	}
	return "", "", false
}
