// Package report renders cross-check runs: the CSV result table, the
// per-participant error report and the full check log.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/engine"
)

// Header returns the result table header for bands.
func Header(bands []model.Band) []string {
	h := []string{"MODE", "CALL"}
	for _, b := range bands {
		s := string(b)
		h = append(h,
			"CLAIMED_QSO_"+s, "QSO_"+s,
			"CLAIMED_POINTS_"+s, "POINTS_"+s,
			"CLAIMED_MULT_"+s, "MULT_"+s,
		)
	}
	return append(h, "CLAIMED_SCORE", "SCORE", "POWER", "COUNTY", "CHECKLOG")
}

// Row returns the result table row of one participant.
func Row(mode model.Mode, bands []model.Band, r *engine.Result) []string {
	row := []string{string(mode), r.Call()}
	for _, b := range bands {
		c, f := r.Claimed.Band(b), r.Final.Band(b)
		row = append(row,
			strconv.Itoa(c.QSO), strconv.Itoa(f.QSO),
			strconv.Itoa(c.Points), strconv.Itoa(f.Points),
			strconv.Itoa(c.Mult), strconv.Itoa(f.Mult),
		)
	}
	return append(row,
		strconv.Itoa(r.ClaimedScore),
		strconv.Itoa(r.Final.Score),
		string(r.Log.Power),
		r.Log.County,
		r.Log.ChecklogFlag(),
	)
}

// WriteResults writes the CSV result table: one header, then the
// participants of each run ordered by call.
func WriteResults(w io.Writer, bands []model.Band, runs ...*engine.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(bands)); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	for _, run := range runs {
		for _, r := range run.Results {
			if err := cw.Write(Row(run.Mode, bands, r)); err != nil {
				return fmt.Errorf("%w: %w", ErrWrite, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// FormatQSO renders a contact as a Cabrillo QSO line.
func FormatQSO(rec *model.ContactRecord) string {
	return fmt.Sprintf("QSO: %5d %s %s %-13s %s %03d %-2s %-13s %s %03d %-2s",
		rec.FreqKHz, rec.Mode, rec.Time.Format("2006-01-02 1504"),
		rec.Call, rec.Sent.Report, rec.Sent.Serial, rec.Sent.County,
		rec.Worked, rec.Rcvd.Report, rec.Rcvd.Serial, rec.Rcvd.County)
}

// WriteErrors writes one line per INVALID or PARTIAL contact, followed by
// rejected source lines. It writes nothing for a clean log.
func WriteErrors(w io.Writer, r *engine.Result) error {
	var b strings.Builder
	for i := range r.Log.Contacts {
		out := r.Outcomes[i]
		if out.Status == model.Full {
			continue
		}
		rec := &r.Log.Contacts[i]
		fmt.Fprintf(&b, "line %d\t%s\t%s\t%s\t%s\n",
			rec.Line, FormatQSO(rec), out.Status, out.Reason, out.Detail)
	}
	for _, f := range r.Log.Failures {
		fmt.Fprintf(&b, "line %d\t%s\tREJECTED\t%s\t%v\n", f.Line, f.Text, f.Kind, f.Err)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// WriteCheckLog writes every contact with its points, the multiplier it
// earned (first credited county per band, marked "+CODE") or the reason
// it lost points.
func WriteCheckLog(w io.Writer, r *engine.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s %s score=%d claimed=%d\n",
		r.Call(), r.Log.Mode, r.Log.Power, r.Final.Score, r.ClaimedScore)

	earned := make(map[model.Band]map[string]bool)
	for i := range r.Log.Contacts {
		rec, out := &r.Log.Contacts[i], r.Outcomes[i]
		fmt.Fprintf(&b, "%s\t%d", FormatQSO(rec), out.Points())
		if out.Status != model.Full || out.Reason == model.ReasonShadowStation {
			fmt.Fprintf(&b, "\t(%s)", out.Detail)
		}
		if out.Points() > 0 && out.Mult {
			seen := earned[rec.Band]
			if seen == nil {
				seen = make(map[string]bool)
				earned[rec.Band] = seen
			}
			if !seen[rec.Rcvd.County] {
				seen[rec.Rcvd.County] = true
				fmt.Fprintf(&b, "\t+%s", rec.Rcvd.County)
			}
		}
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
