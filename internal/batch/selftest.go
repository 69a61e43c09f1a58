package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/rhdcoder/internal/rhd"
)

// SampleTexts is the literal fixture of self-test case 3.
var SampleTexts = []string{
	"Hello, World!",
	"This is a test document with special characters: äöü ß",
	"1234567890",
	"Multi\nLine\nText\nWith\nNewlines",
	"",
	"Latin-1 special chars: ¡¢£¤¥¦§¨©ª«¬®¯°±²³´µ¶·¸¹º»¼½¾¿",
	"\x00\x1f\x7f\u0080ÿ",
}

// selfTest runs the three fixed cases. It reads at most two records and
// never writes.
func (r *Runner) selfTest(ctx context.Context, log *slog.Logger, codec *rhd.Codec, summary Summary) Summary {
	// Case 1: a plain record survives encode then decode.
	summary = summary.Record(r.selfTestRecord(ctx, log, "case 1", false, codec.Encode, codec.Decode))

	// Case 2: an obfuscated record survives decode then encode.
	summary = summary.Record(r.selfTestRecord(ctx, log, "case 2", true, codec.Decode, codec.Encode))

	// Case 3: literal samples, empty string included.
	for i, text := range SampleTexts {
		if ctx.Err() != nil {
			summary.Interrupted = true
			return summary
		}
		out := Outcome{Name: fmt.Sprintf("sample %d", i+1)}
		if err := roundTrip(text, codec.Encode, codec.Decode); err != nil {
			log.Error("self-test sample failed", "sample", i+1, "expected", fmt.Sprintf("%q", text), "error", err)
			summary = summary.Record(failed(out, classify(err), err.Error()))
			continue
		}
		log.Info("self-test sample passed", "sample", i+1)
		out.Result = ResultSucceeded
		summary = summary.Record(out)
	}
	return summary
}

func (r *Runner) selfTestRecord(ctx context.Context, log *slog.Logger, name string, obfuscated bool, there, back func(string) (string, error)) Outcome {
	out := Outcome{Name: name}
	rec, ok, err := r.Store.FetchOne(ctx, obfuscated)
	if err != nil {
		log.Error("self-test "+name+" could not read a record", "error", err)
		return failed(out, CodeStoreRead, err.Error())
	}
	if !ok {
		log.Warn("self-test "+name+" skipped: no matching record", "obfuscated", obfuscated)
		out.Result = ResultSkipped
		return out
	}

	out.ID = rec.ID
	out.Name = fmt.Sprintf("%s (%s)", name, rec.Name)
	if err := roundTrip(rec.Content, there, back); err != nil {
		log.Error("self-test "+name+" failed", "id", rec.ID, "name", rec.Name, "error", err)
		return failed(out, classify(err), err.Error())
	}
	log.Info("self-test "+name+" passed", "id", rec.ID, "name", rec.Name, "bytes", len(rec.Content))
	out.Result = ResultSucceeded
	return out
}
