package warcdebug

import "testing"

func TestReportTotals(t *testing.T) {
	rpt := &Report{
		Status: StatusMultiCompressed,
		Members: []Member{
			{ID: 0, Offset: 0, CompressedLen: 20, UncompressedLen: 36},
			{ID: 1, Offset: 20, CompressedLen: 25, UncompressedLen: 40},
		},
	}
	if got := rpt.TotalCompressed(); got != 45 {
		t.Errorf("TotalCompressed() = %d, want 45", got)
	}
	if got := rpt.TotalUncompressedBySum(); got != 76 {
		t.Errorf("TotalUncompressedBySum() = %d, want 76", got)
	}
	if got := rpt.TotalUncompressedByOffset(); got != 60 {
		t.Errorf("TotalUncompressedByOffset() = %d, want 60", got)
	}
}

func TestReportRecommendationUncompressedNamedGz(t *testing.T) {
	rpt := &Report{Filename: "file.gz", Status: StatusUncompressed}
	want := "file is named as gzip (.gz) but is not compressed: remove the extension or compress it"
	if got := rpt.Recommendation(); got != want {
		t.Errorf("Recommendation() = %q, want %q", got, want)
	}
}

func TestReportRecommendationMultiCompressedUnnamed(t *testing.T) {
	rpt := &Report{Filename: "file.warc", Status: StatusMultiCompressed}
	want := "file is a proper multi-member gzip stream but lacks a .gz extension: rename to add .gz"
	if got := rpt.Recommendation(); got != want {
		t.Errorf("Recommendation() = %q, want %q", got, want)
	}
}

func TestReportRecommendationMultiCompressedNamed(t *testing.T) {
	rpt := &Report{Filename: "file.warc.gz", Status: StatusMultiCompressed}
	want := "file is a proper multi-member gzip stream: OK"
	if got := rpt.Recommendation(); got != want {
		t.Errorf("Recommendation() = %q, want %q", got, want)
	}
}

func TestReportStringFormat(t *testing.T) {
	rpt := &Report{
		Status: StatusSingleCompressed,
		Members: []Member{
			{ID: 0, Offset: 0, CompressedLen: 10, UncompressedLen: 20},
		},
	}
	want := "GzipReport(status=singleCompressed, #entries=1, compressed=10 bytes, uncompressed=20 bytes, exception=none)"
	if got := rpt.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestHasGzExtensionCaseInsensitive(t *testing.T) {
	for _, tc := range []struct {
		name string
		want bool
	}{
		{"a.gz", true},
		{"a.GZ", true},
		{"a.txt", false},
		{"gz", false},
		{"", false},
	} {
		if got := hasGzExtension(tc.name); got != tc.want {
			t.Errorf("hasGzExtension(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
