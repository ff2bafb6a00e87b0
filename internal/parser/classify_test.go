package parser

import (
	"testing"

	consts "chat-importer/pkg/constants"
)

func TestClassifyMedia(t *testing.T) {
	cases := []struct {
		text     string
		category string
		filename string
	}{
		{"IMG-20230101.jpg", consts.MediaImage, "IMG-20230101.jpg"},
		{"PTT-20230101.opus", consts.MediaAudio, "PTT-20230101.opus"},
		{"VID-20230101-WA0003.mp4 (file attached)", consts.MediaVideo, "VID-20230101-WA0003.mp4"},
		{"<attached: 00000031-AUDIO-2023-01-01.opus>", consts.MediaAudio, "00000031-AUDIO-2023-01-01.opus"},
		{"<attached: report.pdf>", consts.MediaDocument, "report.pdf"},
		{"<attached: contact.unknownext>", consts.MediaDocument, "contact.unknownext"},
		{"image omitted", consts.MediaImage, ""},
		{"Bild weggelassen", consts.MediaImage, ""},
		{"video omitido", consts.MediaVideo, ""},
		{"<Media omitted>", consts.MediaDocument, ""},
		{"DOC-20230101-WA0001.docx", consts.MediaDocument, "DOC-20230101-WA0001.docx"},
	}
	for _, tc := range cases {
		cat, name, ok := ClassifyMedia(tc.text)
		if !ok {
			t.Errorf("%q: not classified", tc.text)
			continue
		}
		if cat != tc.category || name != tc.filename {
			t.Errorf("%q: got (%s, %q), want (%s, %q)", tc.text, cat, name, tc.category, tc.filename)
		}
	}

	if _, _, ok := ClassifyMedia("just text about images"); ok {
		t.Fatal("plain text classified as media")
	}
}

func TestIsSystemMessage(t *testing.T) {
	for _, text := range []string{"Alice added Bob", "Bob LEFT", "Your security code changed", "Missed voice call"} {
		if !IsSystemMessage(text) {
			t.Errorf("%q should be system", text)
		}
	}
	if IsSystemMessage("Hello there") {
		t.Fatal("regular text flagged as system")
	}
}

func TestListsAreOrdered(t *testing.T) {
	names := []string{"dmy_24h", "dmy_12h", "bracketed", "dotted", "iso"}
	if len(Grammars) != len(names) {
		t.Fatalf("got %d grammars", len(Grammars))
	}
	for i, g := range Grammars {
		if g.Name != names[i] {
			t.Fatalf("grammar %d = %s, want %s", i, g.Name, names[i])
		}
	}

	order := map[string]int{consts.MediaImage: 0, consts.MediaVideo: 1, consts.MediaAudio: 2, consts.MediaDocument: 3}
	last := 0
	for _, mp := range MediaPatterns {
		if order[mp.Category] < last {
			t.Fatalf("media patterns out of category order at %s", mp.Pattern)
		}
		last = order[mp.Category]
	}

	if SystemIndicators[0] != "changed the subject" {
		t.Fatalf("unexpected first indicator %q", SystemIndicators[0])
	}
}
