// Package scholia builds a school's timetable as a graph.
//
// A timetable is described by five tables (school, terms, weeks, days, periods). Scholia turns
// them into a hierarchy of nodes (timetable, academic years, terms and breaks, weeks, days and
// periods), links every level to a generic calendar layer, chains each level in time order and
// merges the result into a graph store. Every write is a merge keyed by unique_id, so a build
// can be re-run at any time without creating duplicates.
//
// # Basic Usage
//
//	store, err := driver.NewNeo4jDriver("bolt://localhost:7687", "neo4j", "password", "neo4j", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close(ctx)
//
//	client, err := scholia.NewClient(store, workspace.New("/srv/schools", nil), nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	set, err := tables.Read("timetable.xlsx")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.BuildTimetable(ctx, set, "", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.NodesWritten, result.EdgesWritten)
//
// # Relationship types
//
// Containment edges are named <PARENT>_HAS_<CHILD>, calendar cross-links <NODE>_IS_<CALENDAR>
// and sequence edges <LATER>_FOLLOWS_<EARLIER>, all in upper snake case, e.g.
// ACADEMIC_WEEK_HAS_ACADEMIC_DAY, ACADEMIC_DAY_IS_CALENDAR_DAY and
// ACADEMIC_TERM_BREAK_FOLLOWS_ACADEMIC_TERM.
//
// # Dry runs
//
// A Client without a store (or with Config.DryRun) builds and returns the graph without
// writing it, which is how the export command produces Parquet and iCalendar files.
//
// # Build journal
//
// A build is not atomic: a store failure part way leaves the nodes and edges merged so far. With
// Config.CheckpointDir set, each run records the step it reached and its written counts in the
// checkpoint package so a partially linked graph can be spotted and the build re-run.
package scholia
