// Package stats aggregates test run timings over one watch session.
package stats
