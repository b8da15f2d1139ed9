// ABOUTME: Main corelens package providing version information and package documentation
// ABOUTME: This is the root package for the heap-usage attribution tool

// Package corelens computes heap-usage attribution for an inspected process.
// Given a root variable it measures the heap memory transitively reachable
// from it, and across a whole process it ranks variables by heap footprint.
package corelens

// Version is the semantic version of the corelens tool
const Version = "0.1.0-dev"
