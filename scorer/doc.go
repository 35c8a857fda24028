// Package scorer provides acceptability scorers for the verify package.
//
// [Heuristic] works offline from character and token statistics. [Gemini]
// asks a Gemini model to rate the text. Both satisfy verify.Scorer:
//
//	evaluator := verify.New(scorer.NewHeuristic())
//
//	g, err := scorer.NewGemini(ctx, apiKey, "gemini-1.5-flash")
//	if err != nil {
//	    return err
//	}
//	defer g.Close()
//	evaluator := verify.New(g)
package scorer
