// Package point defines a lightweight 3D point-store API and its SQLite-backed
// implementation. It includes:
//   - Point, Box and Ball value types with exact containment helpers
//   - Store interface and SQLiteStore: chunked bulk load, bounding-box and
//     ball queries, export to a file-backed copy
//   - Schema helpers to create the points table and its (x, y, z) index
package point
