// Package gemini implements the generation.Generator interface using
// Google's Gemini API. Text results are requested as structured JSON and
// decoded into the domain result types; image results are persisted
// through a generation.ImageStore and returned by reference. Provider
// failures are classified onto the generation error taxonomy so the
// retry layer can distinguish transient from permanent errors.
package gemini
