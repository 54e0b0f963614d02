// Package zenithds embeds the zenithds query engine in a Go program.
//
// A collection is a directory of CSV files under the data path. Select scans
// every eligible file of a collection in parallel and merges the matching rows.
//
//	client, _ := zenithds.New(zenithds.WithDataPath("./data"), zenithds.WithWorkers(8))
//	t, _ := client.Select(ctx, "main",
//	    []string{"name", "city"},
//	    []string{"age >= 30", "__date >= 20240101"},
//	)
//	for _, row := range t.Page(0, 10) {
//	    fmt.Println(row)
//	}
//
// # File name predicates
//
// A predicate whose field starts with "__" (or that starts with "HAS ") filters
// files by name. By default the date suffix _YYYYMMDD or _YYYY_MM_DD is
// extracted without its leading underscore, so values compare against
// "20240131" or "2024_01_31". Files whose name has no date are always scanned.
// WithFilenameRegex makes the field after "__" a pattern of its own.
package zenithds
