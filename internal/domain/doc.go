// Package domain contains the core entities of the sprout API: background
// jobs, unified (composite) jobs, diary entries, and the typed results
// produced by generation. Entities validate themselves and enforce their
// own lifecycle rules; persistence and transport live elsewhere.
package domain
