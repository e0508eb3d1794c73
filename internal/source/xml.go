package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// XMLSource reads a Charm XML export: a stream of <event> elements with
// taskid/eventid/start/end attributes and the comment as text content.
// The export file lists events in ascending event-id order.
type XMLSource struct {
	Path string
}

func NewXMLSource(path string) *XMLSource {
	return &XMLSource{Path: path}
}

type xmlEvent struct {
	TaskID  int    `xml:"taskid,attr"`
	EventID int    `xml:"eventid,attr"`
	Start   string `xml:"start,attr"`
	End     string `xml:"end,attr"`
	Comment string `xml:",chardata"`
}

func (s *XMLSource) Stream(ctx context.Context, fn func(RawEvent) error) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return &ReadError{Path: s.Path, Err: err}
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &ReadError{Path: s.Path, Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "event" {
			continue
		}

		var ev xmlEvent
		if err := dec.DecodeElement(&ev, &start); err != nil {
			return &ReadError{Path: s.Path, Err: err}
		}

		raw, err := ev.toRawEvent()
		if err != nil {
			return &ReadError{Path: s.Path, Err: err}
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
}

func (ev xmlEvent) toRawEvent() (RawEvent, error) {
	start, err := time.Parse(xmlTimeLayout, ev.Start)
	if err != nil {
		return RawEvent{}, fmt.Errorf("event %d: bad start timestamp %q: %w", ev.EventID, ev.Start, err)
	}
	end, err := time.Parse(xmlTimeLayout, ev.End)
	if err != nil {
		return RawEvent{}, fmt.Errorf("event %d: bad end timestamp %q: %w", ev.EventID, ev.End, err)
	}
	return RawEvent{
		EventID: ev.EventID,
		TaskID:  ev.TaskID,
		Start:   start,
		End:     end,
		Comment: strings.TrimSpace(ev.Comment),
	}, nil
}
