package types

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeKind is the closed set of node variants. The string value is the graph label.
type NodeKind string

const (
	KindSchool NodeKind = "School"

	KindTimetable         NodeKind = "Timetable"
	KindAcademicYear      NodeKind = "AcademicYear"
	KindAcademicTerm      NodeKind = "AcademicTerm"
	KindAcademicTermBreak NodeKind = "AcademicTermBreak"
	KindAcademicWeek      NodeKind = "AcademicWeek"
	KindHolidayWeek       NodeKind = "HolidayWeek"

	KindAcademicDay     NodeKind = "AcademicDay"
	KindHolidayDay      NodeKind = "HolidayDay"
	KindOffTimetableDay NodeKind = "OffTimetableDay"
	KindStaffDay        NodeKind = "StaffDay"

	KindAcademicPeriod     NodeKind = "AcademicPeriod"
	KindRegistrationPeriod NodeKind = "RegistrationPeriod"
	KindBreakPeriod        NodeKind = "BreakPeriod"
	KindOffTimetablePeriod NodeKind = "OffTimetablePeriod"

	KindCalendar      NodeKind = "Calendar"
	KindCalendarYear  NodeKind = "CalendarYear"
	KindCalendarMonth NodeKind = "CalendarMonth"
	KindCalendarWeek  NodeKind = "CalendarWeek"
	KindCalendarDay   NodeKind = "CalendarDay"
)

// AllKinds lists every known kind in hierarchy order.
var AllKinds = []NodeKind{
	KindSchool,
	KindTimetable,
	KindAcademicYear,
	KindAcademicTerm,
	KindAcademicTermBreak,
	KindAcademicWeek,
	KindHolidayWeek,
	KindAcademicDay,
	KindHolidayDay,
	KindOffTimetableDay,
	KindStaffDay,
	KindAcademicPeriod,
	KindRegistrationPeriod,
	KindBreakPeriod,
	KindOffTimetablePeriod,
	KindCalendar,
	KindCalendarYear,
	KindCalendarMonth,
	KindCalendarWeek,
	KindCalendarDay,
}

var knownKinds = func() map[NodeKind]struct{} {
	m := make(map[NodeKind]struct{}, len(AllKinds))
	for _, k := range AllKinds {
		m[k] = struct{}{}
	}
	return m
}()

// ParseKind converts a label into a NodeKind.
func ParseKind(label string) (NodeKind, error) {
	k := NodeKind(strings.TrimSpace(label))
	if _, ok := knownKinds[k]; !ok {
		return "", fmt.Errorf("%w: node kind %q", ErrUnknownVariant, label)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k NodeKind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// Label returns the graph label for the kind.
func (k NodeKind) Label() string { return string(k) }

// RelPrefix returns the kind in UPPER_SNAKE form, e.g. AcademicTermBreak -> ACADEMIC_TERM_BREAK.
func (k NodeKind) RelPrefix() string {
	var b strings.Builder
	for i, r := range string(k) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// IsTerm reports whether k is a term or term break.
func (k NodeKind) IsTerm() bool {
	return k == KindAcademicTerm || k == KindAcademicTermBreak
}

// IsWeek reports whether k is an academic or holiday week.
func (k NodeKind) IsWeek() bool {
	return k == KindAcademicWeek || k == KindHolidayWeek
}

// IsDay reports whether k is one of the four timetable day variants.
func (k NodeKind) IsDay() bool {
	switch k {
	case KindAcademicDay, KindHolidayDay, KindOffTimetableDay, KindStaffDay:
		return true
	}
	return false
}

// IsPeriod reports whether k is one of the four period variants.
func (k NodeKind) IsPeriod() bool {
	switch k {
	case KindAcademicPeriod, KindRegistrationPeriod, KindBreakPeriod, KindOffTimetablePeriod:
		return true
	}
	return false
}

// IsCalendar reports whether k belongs to the generic calendar layer.
func (k NodeKind) IsCalendar() bool {
	switch k {
	case KindCalendar, KindCalendarYear, KindCalendarMonth, KindCalendarWeek, KindCalendarDay:
		return true
	}
	return false
}

// DayType is the closed set of day-row tags accepted in the days table.
type DayType string

const (
	DayTypeAcademic     DayType = "Academic"
	DayTypeHoliday      DayType = "Holiday"
	DayTypeOffTimetable DayType = "OffTimetable"
	DayTypeStaff        DayType = "StaffDay"
)

// ParseDayType maps a days-table tag onto a DayType.
func ParseDayType(s string) (DayType, error) {
	switch strings.TrimSpace(s) {
	case "Academic":
		return DayTypeAcademic, nil
	case "Holiday":
		return DayTypeHoliday, nil
	case "OffTimetable", "Off Timetable":
		return DayTypeOffTimetable, nil
	case "StaffDay", "Staff", "Staff Day":
		return DayTypeStaff, nil
	}
	return "", fmt.Errorf("%w: day type %q", ErrUnknownVariant, s)
}

// Kind returns the node kind built for a day of this type.
func (d DayType) Kind() NodeKind {
	switch d {
	case DayTypeAcademic:
		return KindAcademicDay
	case DayTypeHoliday:
		return KindHolidayDay
	case DayTypeOffTimetable:
		return KindOffTimetableDay
	default:
		return KindStaffDay
	}
}

// PeriodType is the closed set of period-row tags accepted in the periods table.
type PeriodType string

const (
	PeriodTypeAcademic     PeriodType = "Academic"
	PeriodTypeRegistration PeriodType = "Registration"
	PeriodTypeBreak        PeriodType = "Break"
	PeriodTypeOffTimetable PeriodType = "OffTimetable"
)

// ParsePeriodType maps a periods-table tag onto a PeriodType.
func ParsePeriodType(s string) (PeriodType, error) {
	switch strings.TrimSpace(s) {
	case "Academic":
		return PeriodTypeAcademic, nil
	case "Registration":
		return PeriodTypeRegistration, nil
	case "Break":
		return PeriodTypeBreak, nil
	case "OffTimetable", "Off Timetable":
		return PeriodTypeOffTimetable, nil
	}
	return "", fmt.Errorf("%w: period type %q", ErrUnknownVariant, s)
}

// Kind returns the node kind built for a period of this type.
func (p PeriodType) Kind() NodeKind {
	switch p {
	case PeriodTypeAcademic:
		return KindAcademicPeriod
	case PeriodTypeRegistration:
		return KindRegistrationPeriod
	case PeriodTypeBreak:
		return KindBreakPeriod
	default:
		return KindOffTimetablePeriod
	}
}

// Counted reports whether the period takes part in the per-day period index.
func (p PeriodType) Counted() bool {
	return p == PeriodTypeAcademic || p == PeriodTypeRegistration
}
