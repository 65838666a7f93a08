// Package textutil provides text processing utilities for title
// canonicalization, similarity scoring, stage-number extraction, and
// filename sanitization.
//
// Canonicalization is the deterministic normalization applied to both race
// names and feed item titles before they are compared: lowercasing,
// diacritic stripping, year removal, punctuation flattening, and a fixed
// stopword list. Similarity uses the Sørensen–Dice coefficient over
// character bigrams.
package textutil
