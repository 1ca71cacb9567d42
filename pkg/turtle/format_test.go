package turtle

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"turtle", FormatTurtle, false},
		{"TTL", FormatTurtle, false},
		{" n3 ", FormatN3, false},
		{"Notation3", FormatN3, false},
		{"rdfxml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseFormat(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestFormatForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        Format
		wantErr     bool
	}{
		{"text/turtle", FormatTurtle, false},
		{"Text/Turtle; charset=utf-8", FormatTurtle, false},
		{"application/x-turtle", FormatTurtle, false},
		{"text/n3", FormatN3, false},
		{"text/rdf+n3;q=0.9", FormatN3, false},
		{"application/ld+json", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := FormatForContentType(tt.contentType)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatForContentType(%q) error = %v, wantErr %v", tt.contentType, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("FormatForContentType(%q) = %s, want %s", tt.contentType, got, tt.want)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"data/people.ttl", FormatTurtle, false},
		{"RULES.N3", FormatN3, false},
		{"graph.turtle", FormatTurtle, false},
		{"graph.nt", 0, true},
		{"README", 0, true},
	}

	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatForPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("FormatForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestFormatStrings(t *testing.T) {
	for _, f := range []Format{FormatTurtle, FormatN3} {
		parsed, err := ParseFormat(f.String())
		if err != nil || parsed != f {
			t.Errorf("ParseFormat(%q) = %v, %v", f.String(), parsed, err)
		}
		back, err := FormatForContentType(f.ContentType())
		if err != nil || back != f {
			t.Errorf("FormatForContentType(%q) = %v, %v", f.ContentType(), back, err)
		}
	}
	if Format(7).String() != "unknown" {
		t.Errorf("unexpected name for an unknown format: %s", Format(7))
	}
}
