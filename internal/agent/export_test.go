package agent

// Cosine exposes the similarity kernel to the package's external tests.
var Cosine = cosine
