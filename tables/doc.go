// Package tables detects ruled tables on PDF pages.
//
// A ruled table is a grid drawn with thin filled rectangles or stroked
// lines. [RuleDetector] classifies thin rectangles as horizontal or vertical
// [Segment] values, clusters touching segments so several tables on one page
// stay apart, groups aligned segments into grid lines and places glyphs into
// cells by their centers:
//
//	detector := tables.NewRuleDetector()
//	found := detector.Detect(rects, glyphs)
//
// # Configuration
//
// Detector behavior is controlled by [Config]:
//
//	config := tables.DefaultConfig()
//	config.MinRows = 3
//	config.MinConfidence = 0.7
//	detector := tables.NewRuleDetectorWithConfig(config)
//
// # Confidence Scoring
//
// Grid confidence (0-1) is based on:
//
//   - Cell count (30%)
//   - Grid regularity (30%)
//   - Border completeness (20%)
//   - Rule usage (20%)
package tables
