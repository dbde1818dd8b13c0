package attachcrypto

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DecryptAndReencryptLocally is the re-encryptor of spec.md §4.5: it
// decrypts a remotely fetched attachment and re-encrypts it under a
// freshly generated local key, without ever materializing the
// plaintext on disk. The decryptor's output is bridged into the
// encryptor's input over an io.Pipe, the stdlib's own bounded,
// backpressure-providing byte bridge; the two pipelines run under an
// errgroup.Group built from ctx, plus a third goroutine that watches
// ctx.Done() and aborts the pipe on cancellation (spec.md §5), so a
// failure or a caller-driven cancellation on either side unblocks the
// other promptly instead of leaking a goroutine on a half-closed pipe.
func DecryptAndReencryptLocally(ctx context.Context, opts DecryptOptions, relative string, resolver PathResolver) (ReencryptedResult, error) {
	if err := ctx.Err(); err != nil {
		return ReencryptedResult{}, newErr(KindAborted, opts.IDForLogging, "reencryption cancelled before it started")
	}

	localKey, err := GenerateKeys()
	if err != nil {
		return ReencryptedResult{}, err
	}

	absolute, err := resolver(relative)
	if err != nil {
		return ReencryptedResult{}, wrapErr(KindIoOpen, opts.IDForLogging, "resolving output path", err)
	}

	var result ReencryptedResult
	err = withGuardedOutput(absolute, func(f *os.File) error {
		r, encErr := bridgeDecryptIntoEncrypt(ctx, opts, localKey, f)
		if encErr != nil {
			return encErr
		}
		result = ReencryptedResult{
			IVBase64:       base64.StdEncoding.EncodeToString(r.iv),
			LocalKeyBase64: base64.StdEncoding.EncodeToString(localKey),
			PlaintextHash:  r.plaintextHash,
			Version:        2,
		}
		return nil
	})
	if err != nil {
		logError("DecryptAndReencryptLocally", err)
		return ReencryptedResult{}, err
	}
	result.Path = relative
	return result, nil
}

type bridgedResult struct {
	iv            []byte
	plaintextHash string
}

func bridgeDecryptIntoEncrypt(ctx context.Context, opts DecryptOptions, localKey []byte, out io.Writer) (bridgedResult, error) {
	pr, pw := io.Pipe()

	g, gctx := errgroup.WithContext(ctx)

	// pipelinesDone is closed once both pipeline goroutines have
	// returned, so the watcher below can exit on the success path, where
	// gctx is only cancelled after Wait returns.
	var pipelines sync.WaitGroup
	pipelines.Add(2)
	pipelinesDone := make(chan struct{})
	go func() { pipelines.Wait(); close(pipelinesDone) }()

	g.Go(func() error {
		defer pipelines.Done()
		defer pw.Close()
		if _, err := DecryptAttachmentV2ToSink(opts, pw); err != nil {
			pw.CloseWithError(err)
			return err
		}
		return nil
	})

	var encResult EncryptedResult
	g.Go(func() error {
		defer pipelines.Done()
		r, err := EncryptAttachmentV2(StreamSource(pr), localKey, EncryptOptions{Sink: out})
		if err != nil {
			pr.CloseWithError(err)
			return err
		}
		encResult = r
		return nil
	})

	// gctx is also canceled when either pipeline goroutine above returns
	// an error; only report Aborted when the caller's own ctx was the
	// actual cause, not merely a sibling failure tearing gctx down.
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-pipelinesDone:
			return nil
		}
		if ctx.Err() != nil {
			abort := newErr(KindAborted, opts.IDForLogging, "reencryption cancelled")
			pr.CloseWithError(abort)
			pw.CloseWithError(abort)
			return abort
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return bridgedResult{}, toIOError(err, opts.IDForLogging)
	}

	return bridgedResult{iv: encResult.IV, plaintextHash: encResult.PlaintextHash}, nil
}
