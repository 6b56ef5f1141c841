// Package types defines the core data types for the scholia timetable graph.
//
// This package contains the fundamental types used throughout scholia:
//   - Node: a typed timetable or calendar node identified by a deterministic unique_id
//   - Edge: a typed relationship between two nodes (containment, sequence or cross-link)
//   - Batch: an ordered, de-duplicated set of nodes and edges produced by a build
//
// # Node Kinds
//
// Every node carries a closed NodeKind which doubles as its graph label:
//   - Timetable layer: Timetable, AcademicYear, AcademicTerm, AcademicTermBreak,
//     AcademicWeek, HolidayWeek, AcademicDay, HolidayDay, OffTimetableDay, StaffDay,
//     AcademicPeriod, RegistrationPeriod, BreakPeriod, OffTimetablePeriod
//   - Calendar layer: Calendar, CalendarYear, CalendarMonth, CalendarWeek, CalendarDay
//   - School: the owning entity, usually created outside scholia
//
// # Relationship Types
//
// Relationship types are derived from the kinds they connect:
//
//	types.HasRelation(types.KindAcademicWeek, types.KindHolidayDay)       // ACADEMIC_WEEK_HAS_HOLIDAY_DAY
//	types.FollowsRelation(types.KindAcademicTermBreak, types.KindAcademicTerm) // ACADEMIC_TERM_BREAK_FOLLOWS_ACADEMIC_TERM
//	types.IsRelation(types.KindAcademicDay, types.KindCalendarDay)        // ACADEMIC_DAY_IS_CALENDAR_DAY
//
// # Properties
//
// Node.Properties renders the store representation (dates as YYYY-MM-DD strings, times as
// local ISO datetimes) and NodeFromProperties parses it back, so every store driver shares the
// same encoding.
package types
