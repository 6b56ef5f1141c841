package types

import (
	"fmt"
	"time"
)

// Property encodings shared by every store driver.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Node represents a node in the timetable or calendar graph.
type Node struct {
	UniqueID string   `json:"unique_id" mapstructure:"unique_id"`
	Kind     NodeKind `json:"kind" mapstructure:"kind"`
	Name     string   `json:"name,omitempty" mapstructure:"name"`

	// Path is the node's workspace directory. Only directory-backed kinds carry one.
	Path string `json:"path,omitempty" mapstructure:"path"`

	// Range fields (timetable, terms, weeks, calendar months and weeks)
	StartDate time.Time `json:"start_date,omitempty" mapstructure:"start_date"`
	EndDate   time.Time `json:"end_date,omitempty" mapstructure:"end_date"`

	// Year-specific fields
	Year  int `json:"year,omitempty" mapstructure:"year"`
	Month int `json:"month,omitempty" mapstructure:"month"`

	// Term and week fields
	TermNumber int    `json:"term_number,omitempty" mapstructure:"term_number"`
	WeekNumber int    `json:"week_number,omitempty" mapstructure:"week_number"`
	WeekType   string `json:"week_type,omitempty" mapstructure:"week_type"`

	// Day fields
	Date        time.Time `json:"date,omitempty" mapstructure:"date"`
	DayOfWeek   string    `json:"day_of_week,omitempty" mapstructure:"day_of_week"`
	AcademicDay int       `json:"academic_day,omitempty" mapstructure:"academic_day"`
	DayType     string    `json:"day_type,omitempty" mapstructure:"day_type"`

	// Period fields. StartTime and EndTime are full datetimes on the period's date.
	StartTime   time.Time `json:"start_time,omitempty" mapstructure:"start_time"`
	EndTime     time.Time `json:"end_time,omitempty" mapstructure:"end_time"`
	PeriodCode  string    `json:"period_code,omitempty" mapstructure:"period_code"`
	PeriodOfDay int       `json:"academic_or_registration_period_of_day,omitempty" mapstructure:"academic_or_registration_period_of_day"`
}

// Validate checks if the Node has all required fields set.
func (n *Node) Validate() error {
	if n == nil {
		return ErrNilNode
	}
	if n.UniqueID == "" {
		return ErrEmptyUniqueID
	}
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: node kind %q", ErrUnknownVariant, n.Kind)
	}
	return nil
}

// Properties returns the store representation of the node. Zero-valued fields are omitted so
// that merging a sparse node never clears properties set elsewhere.
func (n *Node) Properties() map[string]any {
	props := map[string]any{"unique_id": n.UniqueID}

	setString := func(key, v string) {
		if v != "" {
			props[key] = v
		}
	}
	setInt := func(key string, v int) {
		if v != 0 {
			props[key] = int64(v)
		}
	}
	setDate := func(key string, t time.Time) {
		if !t.IsZero() {
			props[key] = t.Format(DateLayout)
		}
	}
	setDateTime := func(key string, t time.Time) {
		if !t.IsZero() {
			props[key] = t.Format(DateTimeLayout)
		}
	}

	setString("name", n.Name)
	setString("path", n.Path)
	setDate("start_date", n.StartDate)
	setDate("end_date", n.EndDate)
	setInt("year", n.Year)
	setInt("month", n.Month)
	setInt("term_number", n.TermNumber)
	setInt("week_number", n.WeekNumber)
	setString("week_type", n.WeekType)
	setDate("date", n.Date)
	setString("day_of_week", n.DayOfWeek)
	setInt("academic_day", n.AcademicDay)
	setString("day_type", n.DayType)
	setDateTime("start_time", n.StartTime)
	setDateTime("end_time", n.EndTime)
	setString("period_code", n.PeriodCode)
	setInt("academic_or_registration_period_of_day", n.PeriodOfDay)

	return props
}

// NodeFromProperties rebuilds a Node from its store representation.
func NodeFromProperties(kind NodeKind, props map[string]any) (*Node, error) {
	id, _ := props["unique_id"].(string)
	if id == "" {
		return nil, ErrEmptyUniqueID
	}

	n := &Node{UniqueID: id, Kind: kind}
	var err error

	n.Name = stringProp(props, "name")
	n.Path = stringProp(props, "path")
	n.WeekType = stringProp(props, "week_type")
	n.DayOfWeek = stringProp(props, "day_of_week")
	n.DayType = stringProp(props, "day_type")
	n.PeriodCode = stringProp(props, "period_code")

	n.Year = intProp(props, "year")
	n.Month = intProp(props, "month")
	n.TermNumber = intProp(props, "term_number")
	n.WeekNumber = intProp(props, "week_number")
	n.AcademicDay = intProp(props, "academic_day")
	n.PeriodOfDay = intProp(props, "academic_or_registration_period_of_day")

	if n.StartDate, err = timeProp(props, "start_date", DateLayout); err != nil {
		return nil, err
	}
	if n.EndDate, err = timeProp(props, "end_date", DateLayout); err != nil {
		return nil, err
	}
	if n.Date, err = timeProp(props, "date", DateLayout); err != nil {
		return nil, err
	}
	if n.StartTime, err = timeProp(props, "start_time", DateTimeLayout); err != nil {
		return nil, err
	}
	if n.EndTime, err = timeProp(props, "end_time", DateTimeLayout); err != nil {
		return nil, err
	}

	return n, nil
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func intProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func timeProp(props map[string]any, key, layout string) (time.Time, error) {
	switch v := props[key].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(layout, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: property %s=%q", ErrInvalidValue, key, v)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("%w: property %s has type %T", ErrInvalidValue, key, v)
	}
}

// SchoolRef identifies an owning school node that already exists in the store.
type SchoolRef struct {
	UniqueID string `json:"unique_id"`
	Name     string `json:"name,omitempty"`
	Path     string `json:"path,omitempty"`
}

// Node returns the merge representation of the school.
func (s *SchoolRef) Node() *Node {
	return &Node{UniqueID: s.UniqueID, Kind: KindSchool, Name: s.Name, Path: s.Path}
}

// Neighbor is a node adjacent to another node together with the connecting relationship.
type Neighbor struct {
	Node     *Node   `json:"node"`
	RelType  RelType `json:"rel_type"`
	Outgoing bool    `json:"outgoing"`
}
