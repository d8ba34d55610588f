// Package talentdex embeds the candidate matching pipeline in a Go program,
// without running the HTTP server.
//
// A client is configured with functional options and backed by the same
// wiring as the talentdex binary:
//
//	client, err := talentdex.New(ctx,
//	    talentdex.WithValkey("localhost:6379", ""),
//	    talentdex.WithEmbedding(os.Getenv("OPENAI_API_KEY"), "", ""),
//	    talentdex.WithSynthesis("anthropic", os.Getenv("ANTHROPIC_API_KEY"), ""),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	res, err := client.Search(ctx, "Senior React Developer")
//	for _, m := range res.Matches {
//	    fmt.Println(m.Name, m.Accuracy, m.Reason)
//	}
//
// Errors can be inspected with errors.Is against the exported sentinels.
package talentdex
