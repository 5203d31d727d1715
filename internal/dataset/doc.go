// Package dataset provides the SQLite practice database the workbook
// exercises run against.
//
// The database holds two tables:
//   - trips: one row per taxi trip (timing, locations, passenger count,
//     distance, fare/tip/total amounts, payment type code)
//   - zones: one row per pickup/dropoff location (zone name, borough,
//     service zone)
//
// There is deliberately no foreign key from trips to zones: several
// exercises ask the learner to find trips whose location ids have no
// matching zones row, so the generator plants a small share of orphan
// location ids.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforced for any future referential tables
//
// Schema changes are tracked with PRAGMA user_version.
package dataset
