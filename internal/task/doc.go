// Package task encodes, stores, and validates task records.
//
// The task store is a plain text file with one task per line:
//
//	owner,title,description,assigned_date,due_date,completed
//
// For example:
//
//	bob,Write report,Quarterly numbers, charts and notes,2024-01-10,2024-02-01,No
//
// # Delimiters in descriptions
//
// Fields are separated by a bare comma. The description is the only field
// allowed to contain commas. A line that splits into more than six parts is
// read as a description containing commas: every part between the title and
// the last three fields is joined back together with ", ". This is a
// compatibility heuristic, not escaping. A title containing a comma is not
// supported and will shift fields.
//
// # Completion token
//
// The completed field is "Yes" or "No". Reads compare case-insensitively;
// writes always use the canonical spelling.
//
// # Lenient reads
//
// Lines that split into fewer than six parts are dropped from the loaded
// task list without raising an error. Store.Scan reports their line numbers
// for diagnostics.
//
// # Writes
//
// Every mutation rewrites the whole file: load, change one task in memory,
// write the full ordered list back. There is no locking; a second writer
// racing the same file loses updates (last rewrite wins).
package task
