package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/document"
	"github.com/vango-dev/reactive/pkg/observer"
	"github.com/vango-dev/reactive/pkg/snapshot"
	"github.com/vango-dev/reactive/pkg/telemetry"
)

// session is the runtime a command works in.
type session struct {
	dir    string
	cfg    *config.Config
	rt     *observer.Runtime
	tracer *telemetry.Tracer
}

func newSession(dir string, logOut io.Writer) (*session, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	return openSession(dir, cfg, logOut, nil), nil
}

// openSession creates the runtime for cfg. hooks may be nil.
func openSession(dir string, cfg *config.Config, logOut io.Writer, hooks observer.Hooks) *session {
	opts := append(cfg.RuntimeOptions(), observer.WithLogger(cfg.Logger(logOut)))
	if hooks != nil {
		opts = append(opts, observer.WithHooks(hooks))
	}
	rt := observer.New(opts...)
	return &session{
		dir:    dir,
		cfg:    cfg,
		rt:     rt,
		tracer: telemetry.NewTracer(rt),
	}
}

// load decodes the document at path. The root must be an object or array.
func (s *session) load(ctx context.Context, path string) (any, error) {
	var root any
	err := s.tracer.Do(ctx, "reactive.load_document", func(context.Context) error {
		v, err := document.Load(path)
		if err != nil {
			return err
		}
		if !observer.IsContainer(v) {
			return errors.New("D301").
				WithDetail(fmt.Sprintf("%s: the document root is %T, not an object or array", path, v))
		}
		root = v
		return nil
	}, attribute.String("reactive.path", path))
	return root, err
}

// store opens the configured snapshot store. A relative disk directory is
// resolved against the config directory.
func (s *session) store() (snapshot.Store, error) {
	sc := s.cfg.Snapshot
	if sc.Backend == config.BackendS3 {
		client := snapshot.NewS3Client(snapshot.S3ClientConfig{
			Region:          sc.S3.Region,
			Endpoint:        sc.S3.Endpoint,
			UsePathStyle:    sc.S3.UsePathStyle,
			AccessKeyID:     sc.S3.AccessKeyID,
			SecretAccessKey: sc.S3.SecretAccessKey,
			SessionToken:    sc.S3.SessionToken,
		})
		return snapshot.NewS3Store(client, sc.S3.Bucket, sc.S3.Prefix), nil
	}

	dir := sc.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.dir, dir)
	}
	return snapshot.NewDiskStore(dir)
}

// show renders v as compact JSON without subscribing the active target.
func (s *session) show(v any) string {
	var out string
	s.rt.Untracked(func() {
		native, err := document.ToNative(v)
		if err != nil {
			out = fmt.Sprint(v)
			return
		}
		data, err := json.Marshal(native)
		if err != nil {
			out = fmt.Sprint(native)
			return
		}
		out = string(data)
	})
	return out
}
