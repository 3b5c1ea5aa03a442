// Package calculator implements the 30-year energy cost projection: input
// validation, the compounding price loop, and currency formatting of the
// resulting figures. Every function is pure and safe for concurrent use.
package calculator
