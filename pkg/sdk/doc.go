// Package resumatch embeds the resumatch ranking and summarization pipelines
// in a Go program, without running the HTTP services.
//
// # Ranking
//
//	client, _ := resumatch.New(resumatch.WithEmbedder(myEmbedder))
//	res, _ := client.Rank(ctx, jobDescription, []resumatch.File{
//	    {Name: "alice.pdf", Data: pdfBytes},
//	    {Name: "bob.txt", Data: []byte("Go, Kubernetes, Postgres")},
//	})
//	for _, s := range res.Scores {
//	    fmt.Println(s.Filename, s.Similarity)
//	}
//
// Documents that cannot be read or embedded are reported in RankResult.Skipped
// and never fail the call.
//
// # Summarization
//
//	client, _ := resumatch.New(resumatch.WithGenerator(myGenerator))
//	summary, _ := client.Summarize(ctx, transcript)
package resumatch
