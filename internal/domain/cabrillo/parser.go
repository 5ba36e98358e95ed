// Package cabrillo turns Cabrillo contest logs into typed participant logs.
//
// A single bad QSO line never fails a log: the line is recorded as a
// model.ParseFailure and parsing continues.
package cabrillo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/pkg/logger"
	"github.com/okian/xcheck/pkg/metrics"
)

const (
	qsoTag         = "QSO"
	qsoFields      = 12 // freq mode date time call rst nr cty call rst nr cty
	qsoFieldsWithT = 13 // optional transmitter id
	maxLineBytes   = 64 * 1024
	countyLen      = 2
	dxLocation     = "DX"
)

// BandLookup resolves a frequency in kHz to a band.
type BandLookup interface {
	BandFor(freqKHz int) (model.Band, bool)
}

// Parser reads Cabrillo logs.
type Parser struct {
	bands  BandLookup
	mode   model.Mode
	logger logger.Logger
}

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithMode forces the participant mode, e.g. from the directory a log was
// submitted to.
func WithMode(m model.Mode) Option {
	return func(p *Parser) {
		p.mode = m
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a parser that assigns bands through bands.
func New(bands BandLookup, opts ...Option) *Parser {
	p := &Parser{
		bands:  bands,
		logger: logger.Get().Named("cabrillo"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// header collects the tags that shape a ParticipantLog.
type header struct {
	call       string
	mode       model.Mode
	power      model.Power
	location   string
	checklog   bool
	claimed    int
	hasClaimed bool // CLAIMED-SCORE parsed, even an explicit 0
}

// Parse reads one log. The returned error is non-nil only when the stream
// itself cannot be read.
func (p *Parser) Parse(ctx context.Context, r io.Reader, source string) (model.ParticipantLog, error) {
	h := header{power: model.PowerHigh}
	var (
		contacts []model.ContactRecord
		failures []model.ParseFailure
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		tag, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		tag = strings.ToUpper(strings.TrimSpace(tag))
		value = strings.TrimSpace(value)

		if tag == "END-OF-LOG" {
			break
		}
		if tag != qsoTag {
			h.apply(tag, value)
			continue
		}

		rec, fail := p.parseQSO(value, lineNo)
		if fail != nil {
			fail.Text = line
			failures = append(failures, *fail)
			metrics.RecordParseFailure(string(fail.Kind))
			p.logger.Warn(ctx, "rejected QSO line",
				logger.String("source", source),
				logger.Int("line", lineNo),
				logger.String("kind", string(fail.Kind)),
				logger.Error(fail.Err),
			)
			continue
		}
		rec.Seq = len(contacts) + 1
		contacts = append(contacts, rec)
	}
	if err := sc.Err(); err != nil {
		return model.ParticipantLog{}, fmt.Errorf("%w: %s: %w", ErrRead, source, err)
	}

	log := model.ParticipantLog{
		Call:         h.call,
		Mode:         h.mode,
		Power:        h.power,
		Checklog:     h.checklog,
		ClaimedScore: h.claimed,
		HasClaimed:   h.hasClaimed,
		Source:       source,
		Failures:     failures,
	}
	if p.mode != "" {
		log.Mode = p.mode
	}
	if log.Call == "" && len(contacts) > 0 {
		log.Call = contacts[0].Call
	}
	if log.Mode == "" && len(contacts) > 0 {
		log.Mode = contacts[0].Mode
	}
	// Records carry the participant call so the index keys on one identity.
	for i := range contacts {
		contacts[i].Call = log.Call
	}
	log.Contacts = contacts

	// The sent exchange is authoritative; LOCATION is usually "DX" outside
	// North America and only fills in for a log without contacts.
	switch {
	case len(contacts) > 0:
		log.County = contacts[0].Sent.County
	case isCounty(h.location) && h.location != dxLocation:
		log.County = h.location
	}

	metrics.RecordLogParsed(string(log.Mode))
	return log, nil
}

func (h *header) apply(tag, value string) {
	upper := strings.ToUpper(value)
	switch tag {
	case "CALLSIGN":
		h.call = NormalizeCall(value)
	case "CATEGORY-MODE":
		if m, ok := model.ParseMode(value); ok {
			h.mode = m
		}
	case "CATEGORY-POWER":
		switch upper {
		case "HIGH", "LOW":
			h.power = model.Power(upper)
		case "QRP":
			h.power = model.PowerLow
		}
	case "CATEGORY":
		// Legacy combined category line, e.g. "SINGLE-OP ALL LOW CW".
		if strings.Contains(upper, "HIGH") || strings.Contains(upper, "HP") {
			h.power = model.PowerHigh
		}
		if strings.Contains(upper, "LOW") || strings.Contains(upper, "LP") {
			h.power = model.PowerLow
		}
		if strings.Contains(upper, "CHECKLOG") {
			h.checklog = true
		}
		if strings.Contains(upper, "MULTI") {
			h.power = model.PowerMulti
		}
	case "CATEGORY-OPERATOR":
		switch upper {
		case "MULTI-OP":
			h.power = model.PowerMulti
		case "CHECKLOG":
			h.checklog = true
		}
	case "CATEGORY-STATION":
		if upper == "CHECKLOG" {
			h.checklog = true
		}
	case "LOCATION":
		h.location = upper
	case "CLAIMED-SCORE":
		if n, err := strconv.Atoi(strings.ReplaceAll(value, ",", "")); err == nil {
			h.claimed = n
			h.hasClaimed = true
		}
	}
}

// parseQSO converts the value of a QSO: line.
func (p *Parser) parseQSO(value string, lineNo int) (model.ContactRecord, *model.ParseFailure) {
	fail := func(kind model.FailureKind, err error) (model.ContactRecord, *model.ParseFailure) {
		return model.ContactRecord{}, &model.ParseFailure{Line: lineNo, Kind: kind, Err: err}
	}

	f := strings.Fields(value)
	if len(f) != qsoFields && len(f) != qsoFieldsWithT {
		return fail(model.FailureFieldCount, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedLine, len(f), qsoFields))
	}

	freq, err := parseFreq(f[0])
	if err != nil {
		return fail(model.FailureFrequency, err)
	}
	band, ok := p.bands.BandFor(freq)
	if !ok {
		return fail(model.FailureBand, fmt.Errorf("%w: %d kHz", ErrUnknownBand, freq))
	}
	mode, ok := model.ParseMode(f[1])
	if !ok {
		return fail(model.FailureMode, fmt.Errorf("%w: %q", ErrUnknownMode, f[1]))
	}
	ts, err := parseTime(f[2], f[3])
	if err != nil {
		return fail(model.FailureTimestamp, err)
	}

	sent, err := parseExchange(f[5], f[6], f[7])
	if err != nil {
		return fail(model.FailureSerial, err)
	}
	rcvd, err := parseExchange(f[9], f[10], f[11])
	if err != nil {
		return fail(model.FailureSerial, err)
	}

	own := NormalizeCall(f[4])
	worked := NormalizeCall(f[8])
	if own == "" || worked == "" {
		return fail(model.FailureCallsign, fmt.Errorf("%w: empty call sign", ErrMalformedLine))
	}

	return model.ContactRecord{
		Line:    lineNo,
		FreqKHz: freq,
		Band:    band,
		Mode:    mode,
		Time:    ts,
		Call:    own,
		Sent:    sent,
		Worked:  worked,
		Rcvd:    rcvd,
	}, nil
}

// parseFreq accepts kHz ("3525", "3525.5") or MHz ("3.5", "7") notation.
func parseFreq(s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadFrequency, s)
	}
	if v < 1000 {
		v *= 1000
	}
	return int(v), nil
}

func parseTime(date, hhmm string) (time.Time, error) {
	if len(hhmm) < 4 {
		hhmm = strings.Repeat("0", 4-len(hhmm)) + hhmm
	}
	ts, err := time.ParseInLocation("2006-01-02 1504", date+" "+hhmm, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %s", ErrBadTimestamp, date, hhmm)
	}
	return ts, nil
}

func parseExchange(report, serial, county string) (model.Exchange, error) {
	n, err := strconv.Atoi(serial)
	if err != nil || n < 0 {
		return model.Exchange{}, fmt.Errorf("%w: %q", ErrBadSerial, serial)
	}
	return model.Exchange{
		Report: report,
		Serial: n,
		County: strings.ToUpper(county),
	}, nil
}

func isCounty(s string) bool {
	if len(s) != countyLen {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
