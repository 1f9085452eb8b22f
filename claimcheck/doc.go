// Package claimcheck keeps large envelopes out of the primary channel.
//
// A Checker encodes an envelope and, when the buffer exceeds a size threshold,
// deposits it in a blob Store and returns an encoded reference instead. On the
// receiving side Unpack sniffs the buffer: references are resolved through the
// store before decoding, full envelopes are decoded directly.
//
//	checker := claimcheck.New(c, claimcheck.NewMemoryStore(),
//	    claimcheck.WithThreshold(64*1024),
//	    claimcheck.WithContainer("envelopes"),
//	)
//	data, err := checker.Pack(ctx, env)
//	...
//	env, err := checker.Unpack(ctx, data)
package claimcheck
