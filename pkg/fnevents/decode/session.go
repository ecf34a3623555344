package decode

import (
	"fmt"

	"github.com/randalmurphal/fnevents/pkg/fnevents/recording"
)

// Report is a decoded recording session.
type Report struct {
	Lines     []Line   `json:"lines"`
	Open      []Block  `json:"open,omitempty"`
	Abandoned []Block  `json:"abandoned,omitempty"`
	Problems  []string `json:"problems,omitempty"`
}

// DecodeSession decodes recorded records in order. Undecodable records are
// listed in Problems and skipped.
func DecodeSession(recs []recording.Record) Report {
	d := NewDecoder()
	var r Report
	for _, rec := range recs {
		evt, err := rec.Event()
		if err != nil {
			r.Problems = append(r.Problems, fmt.Sprintf("record %d: %v", rec.Sequence, err))
			continue
		}
		line, err := d.Decode(evt, rec.Timestamp)
		if err != nil {
			r.Problems = append(r.Problems, fmt.Sprintf("record %d: %v", rec.Sequence, err))
			continue
		}
		r.Lines = append(r.Lines, line)
	}
	r.Open = d.Blocks().Open()
	r.Abandoned = d.Blocks().Abandoned()
	return r
}
