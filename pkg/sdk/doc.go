// Package kmsearch embeds Khmer full-text search over published resources
// stored in SQLite.
//
// A search runs up to three stages and stops at the first that matches:
//   - Phrase: the whole query with zero-width spaces removed
//   - Word split: every word separated by whitespace or zero-width spaces
//   - Segmented: tokens produced by the configured segmenter
//
// Every term must appear in at least one searchable column. Only published
// resources are returned, audit actors are reduced to id and name, and
// results keep storage order.
//
//	client, _ := kmsearch.New(ctx, kmsearch.WithSQLite("data/kmsearch.db"))
//	defer client.Close()
//	_, _ = client.ImportFile(ctx, "seed.yaml")
//	res, _ := client.Search(ctx, "សាលារៀន", 1, 25)
//	for _, doc := range res.Documents {
//	    fmt.Println(doc.DocumentID, doc.KhmerTitle)
//	}
package kmsearch
