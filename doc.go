// Package stickerloop turns a still photo into a short looping animated PNG
// sticker.
//
// The pipeline is: extract the foreground (matte.Extractor), clean the matte
// edge once (matte.Clean), sample and composite the procedural animation at
// 8 fps (animation.Assemble with render.Compositor), encode it as APNG
// (apngenc.Encoder) and finally patch the acTL play count in place
// (mux.SetLoopCount).
//
// Basic usage:
//
//	opts := stickerloop.DefaultOptions()
//	opts.Kind = motion.Shake
//	opts.LoopCount = 2
//	res, err := (&stickerloop.Exporter{}).Export(ctx, photo, opts)
//	os.WriteFile(res.FileName, res.Data, 0o644)
//
// The result is a valid PNG: decoders without APNG support show the first
// frame.
package stickerloop
