package icalendar

import (
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/emersion/go-ical"
)

// xCal (RFC 6321) is the XML representation of iCalendar data. Only the
// property vocabulary produced by Export is covered.

const xcalNamespace = "urn:ietf:params:xml:ns:icalendar-2.0"

// value element names per property; everything else is rendered as text.
var xcalValueTypes = map[string]string{
	ical.PropDateTimeStart:  "date",
	ical.PropExceptionDates: "date",
	ical.PropDateTimeStamp:  "date-time",
	ical.PropRecurrenceRule: "recur",
}

// MarshalXCal renders a calendar as an xCal document.
func MarshalXCal(cal *ical.Calendar) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", xcalNamespace)

	vcal := root.CreateElement("vcalendar")
	writeProperties(vcal, cal.Props)

	if len(cal.Children) > 0 {
		components := vcal.CreateElement("components")
		for _, child := range cal.Children {
			comp := components.CreateElement(strings.ToLower(child.Name))
			writeProperties(comp, child.Props)
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func writeProperties(parent *etree.Element, props ical.Props) {
	if len(props) == 0 {
		return
	}
	container := parent.CreateElement("properties")
	for _, propGroup := range props {
		for _, prop := range propGroup {
			elem := container.CreateElement(strings.ToLower(prop.Name))
			valueType := xcalValueTypes[prop.Name]
			if valueType == "" {
				valueType = "text"
			}
			for _, value := range splitPropValues(prop.Name, prop.Value) {
				elem.CreateElement(valueType).SetText(formatXCalValue(valueType, value))
			}
		}
	}
}

// splitPropValues expands multi-valued properties (EXDATE) into one value
// element each, per RFC 6321.
func splitPropValues(name, value string) []string {
	if name != ical.PropExceptionDates {
		return []string{value}
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// formatXCalValue converts iCalendar basic date forms to the extended
// forms xCal mandates.
func formatXCalValue(valueType, value string) string {
	switch valueType {
	case "date":
		if t, err := time.Parse(icalDateLayout, value); err == nil {
			return t.Format("2006-01-02")
		}
	case "date-time":
		if t, err := time.Parse("20060102T150405Z", value); err == nil {
			return t.Format("2006-01-02T15:04:05Z")
		}
	}
	return value
}
