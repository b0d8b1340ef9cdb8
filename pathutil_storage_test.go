package dlcf_library

import (
	"strings"
	"testing"

	"github.com/IsraelDcoder/Dlcf-library/models"
)

func TestAllowedFile(t *testing.T) {
	cases := []struct {
		filename    string
		contentType string
		want        bool
	}{
		{"lesson.pdf", models.ContentTypePDF, true},
		{"lesson.PDF", models.ContentTypePDF, true},
		{"lesson.exe", models.ContentTypePDF, false},
		{"book.epub", models.ContentTypeEbook, true},
		{"book.pdf", models.ContentTypeEbook, true},
		{"talk.mp3", models.ContentTypeAudio, true},
		{"talk.mp4", models.ContentTypeAudio, false},
		{"clip.mkv", models.ContentTypeVideo, true},
		{"recording.m4a", models.ContentTypeLive, true},
		{"recording.mp4", models.ContentTypeLive, false},
		{"noextension", models.ContentTypePDF, false},
		{"file.pdf", "bogus", false},
	}
	for _, tc := range cases {
		if got := allowedFile(tc.filename, tc.contentType); got != tc.want {
			t.Errorf("allowedFile(%q, %q) = %v, want %v", tc.filename, tc.contentType, got, tc.want)
		}
	}
}

func TestRecordingFilename(t *testing.T) {
	name := recordingFilename(10, `C:\temp\lecture.mp3`)
	if !strings.HasPrefix(name, "10_") || !strings.HasSuffix(name, "_lecture.mp3") {
		t.Fatalf("unexpected recording name %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		t.Fatalf("recording name keeps a directory component: %q", name)
	}
}
