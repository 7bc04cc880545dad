package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var ErrTooFewOpts = errors.New("too few options")

// Serde encodes values in the registry wire format: magic byte, schema id
// and the avro body.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func (o serdeOpts) complete() bool {
	return o.subject != "" && o.si != nil
}

func SubjectOpt(subject string) Opt {
	return func(o *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		o.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(o *serdeOpts) error {
		if si == nil {
			return errors.New("schema identifier is nil")
		}
		o.si = si
		return nil
	}
}

// ValueSubject names the value subject of topic by the topic name strategy.
func ValueSubject(topic string) string {
	return topic + "-value"
}

func NewSerdeProductV1(ctx context.Context, opts ...Opt) (Serde, error) {
	return newSerde[ProductV1](ctx, "NewSerdeProductV1", ProductSchemaTextV1, opts)
}

func NewSerdeSavedEventV1(ctx context.Context, opts ...Opt) (Serde, error) {
	return newSerde[SavedEventV1](ctx, "NewSerdeSavedEventV1", SavedEventSchemaTextV1, opts)
}

// newSerde parses schemaText, resolves its registry id and binds it to T.
func newSerde[T any](
	ctx context.Context, op, schemaText string, opts []Opt,
) (Serde, error) {
	var o serdeOpts
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if !o.complete() {
		return nil, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	avroSchema, err := avro.Parse(schemaText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := o.si.DetermineID(ctx, o.subject, schemaText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var s sr.Serde
	s.Register(
		id,
		*new(T),
		sr.EncodeFn(func(v any) ([]byte, error) {
			return avro.Marshal(avroSchema, v)
		}),
		sr.DecodeFn(func(data []byte, v any) error {
			return avro.Unmarshal(avroSchema, data, v)
		}),
	)
	return &s, nil
}
