// Package flux is a cross-platform file archiver and compressor.
//
// It packs files and directory trees into tar, zip, and 7z archives,
// extracts them back, inspects their metadata, and supports incremental
// backups driven by a content-addressed manifest.
//
// # Basic Usage
//
// Create a client and pack a directory:
//
//	client, err := flux.NewClient()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := os.Create("backup.tar.zst")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer out.Close()
//
//	err = client.Pack(ctx, "./data", out, "backup.tar.zst", flux.PackOptions{})
//
//	// List entries without extracting
//	entries, err := client.Inspect(ctx, archiveFile, size, "backup.tar.zst")
//
//	// Extract with safety limits enforced
//	result, err := client.Extract(ctx, archiveFile, size, "backup.tar.zst", "./restore", flux.DefaultExtractOptions())
//
// # Compression
//
// Explicit algorithm selection (store, gzip, zstd, xz, brotli) is
// available via PackOptions.Algorithm with Mode set to ModeExplicit; the
// default ModeSmart instead inspects file content to pick a codec.
//
// # Incremental backups
//
// client.Sync builds a content-hashed manifest of a directory, diffs it
// against a prior manifest, and packs only the changed files.
package flux
