// Package batch runs one tool operation over several ids and reports the
// outcome of each, so a single failure does not hide the others.
package batch
