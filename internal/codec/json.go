package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"modelsync/internal/notification"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a document from JSON
func (c *JSONCodec) Parse(r io.Reader) (*Document, error) {
	var doc Document
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &doc, nil
}

// Export writes a document as indented JSON
func (c *JSONCodec) Export(doc *Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// envelope tags a notification body with its kind. Composites carry their
// parts as nested envelopes.
type envelope struct {
	Kind  notification.Kind `json:"kind"`
	Body  json.RawMessage   `json:"body"`
	Parts []envelope        `json:"parts,omitempty"`
}

// MarshalNotification encodes n as a self-describing JSON envelope
func MarshalNotification(n notification.Notification) ([]byte, error) {
	env, err := wrap(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func wrap(n notification.Notification) (envelope, error) {
	if c, ok := n.(notification.Composite); ok {
		body, err := json.Marshal(c.Meta)
		if err != nil {
			return envelope{}, err
		}
		env := envelope{Kind: c.Kind(), Body: body, Parts: make([]envelope, 0, len(c.Parts))}
		for _, p := range c.Parts {
			part, err := wrap(p)
			if err != nil {
				return envelope{}, err
			}
			env.Parts = append(env.Parts, part)
		}
		return env, nil
	}
	body, err := json.Marshal(n)
	if err != nil {
		return envelope{}, fmt.Errorf("encode %s: %w", n.Kind(), err)
	}
	return envelope{Kind: n.Kind(), Body: body}, nil
}

// UnmarshalNotification decodes an envelope written by MarshalNotification.
// Integer property values come back as float64; the graph normalizes them
// on use.
func UnmarshalNotification(data []byte) (notification.Notification, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return unwrap(env)
}

func unwrap(env envelope) (notification.Notification, error) {
	if env.Kind == notification.KindComposite {
		var c notification.Composite
		if err := json.Unmarshal(env.Body, &c.Meta); err != nil {
			return nil, fmt.Errorf("decode composite: %w", err)
		}
		for _, p := range env.Parts {
			part, err := unwrap(p)
			if err != nil {
				return nil, err
			}
			c.Parts = append(c.Parts, part)
		}
		return c, nil
	}
	decode, ok := decoders[env.Kind]
	if !ok {
		return nil, fmt.Errorf("decode notification: unknown kind %q", env.Kind)
	}
	n, err := decode(env.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	return n, nil
}

func decodeAs[T notification.Notification](body json.RawMessage) (notification.Notification, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var decoders = map[notification.Kind]func(json.RawMessage) (notification.Notification, error){
	notification.KindPropertyAdded:   decodeAs[notification.PropertyAdded],
	notification.KindPropertyDeleted: decodeAs[notification.PropertyDeleted],
	notification.KindPropertyChanged: decodeAs[notification.PropertyChanged],

	notification.KindChildAdded:                                            decodeAs[notification.ChildAdded],
	notification.KindChildDeleted:                                          decodeAs[notification.ChildDeleted],
	notification.KindChildReplaced:                                         decodeAs[notification.ChildReplaced],
	notification.KindChildMovedFromOtherContainment:                        decodeAs[notification.ChildMovedFromOtherContainment],
	notification.KindChildMovedFromOtherContainmentInSameParent:            decodeAs[notification.ChildMovedFromOtherContainmentInSameParent],
	notification.KindChildMovedInSameContainment:                           decodeAs[notification.ChildMovedInSameContainment],
	notification.KindChildMovedAndReplacedFromOtherContainment:             decodeAs[notification.ChildMovedAndReplacedFromOtherContainment],
	notification.KindChildMovedAndReplacedFromOtherContainmentInSameParent: decodeAs[notification.ChildMovedAndReplacedFromOtherContainmentInSameParent],
	notification.KindChildMovedAndReplacedInSameContainment:                decodeAs[notification.ChildMovedAndReplacedInSameContainment],

	notification.KindAnnotationAdded:                           decodeAs[notification.AnnotationAdded],
	notification.KindAnnotationDeleted:                         decodeAs[notification.AnnotationDeleted],
	notification.KindAnnotationReplaced:                        decodeAs[notification.AnnotationReplaced],
	notification.KindAnnotationMovedFromOtherParent:            decodeAs[notification.AnnotationMovedFromOtherParent],
	notification.KindAnnotationMovedInSameParent:               decodeAs[notification.AnnotationMovedInSameParent],
	notification.KindAnnotationMovedAndReplacedFromOtherParent: decodeAs[notification.AnnotationMovedAndReplacedFromOtherParent],
	notification.KindAnnotationMovedAndReplacedInSameParent:    decodeAs[notification.AnnotationMovedAndReplacedInSameParent],

	notification.KindReferenceAdded:              decodeAs[notification.ReferenceAdded],
	notification.KindReferenceDeleted:            decodeAs[notification.ReferenceDeleted],
	notification.KindReferenceChanged:            decodeAs[notification.ReferenceChanged],
	notification.KindReferenceTargetAdded:        decodeAs[notification.ReferenceTargetAdded],
	notification.KindReferenceTargetDeleted:      decodeAs[notification.ReferenceTargetDeleted],
	notification.KindReferenceTargetChanged:      decodeAs[notification.ReferenceTargetChanged],
	notification.KindReferenceResolveInfoAdded:   decodeAs[notification.ReferenceResolveInfoAdded],
	notification.KindReferenceResolveInfoDeleted: decodeAs[notification.ReferenceResolveInfoDeleted],
	notification.KindReferenceResolveInfoChanged: decodeAs[notification.ReferenceResolveInfoChanged],

	notification.KindPartitionAdded:   decodeAs[notification.PartitionAdded],
	notification.KindPartitionDeleted: decodeAs[notification.PartitionDeleted],
}
