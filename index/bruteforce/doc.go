// Package bruteforce provides a simple point index that answers box, ball and
// nearest-neighbour queries by scanning every point. It is the exact
// reference used to verify results produced by SQLite.
package bruteforce
