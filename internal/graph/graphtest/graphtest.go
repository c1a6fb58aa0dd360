// Package graphtest provides a small geometry language and forest helpers
// for tests of packages built on graph.
package graphtest

import (
	"modelsync/internal/graph"
	"modelsync/internal/schema"
)

func opt(key string, kind schema.FeatureKind, typ string, multiple bool) *schema.Feature {
	return &schema.Feature{Key: key, Kind: kind, Type: typ, Multiple: multiple, Optional: true}
}

// Language returns a fresh geometry language:
//
//	Geometry (partition)   title, shapes*, archive*, favorite -> Shape, links* -> Shape
//	Shape                  name (required), size, parts*
//	Circle < Shape         r, center
//	Line < Shape           start, end
//	Polygon < Shape        points+ (required)
//	Coord                  x, y
//	Documentation (ann.)   text
//	BillOfMaterials (ann.) materials* -> Shape, altGroups*, defaultGroup
//	MaterialGroup          matterState, materials* -> Shape, defaultShape
func Language() *schema.Language {
	return schema.MustLanguage("geometry", "1",
		&schema.Classifier{Key: "Geometry", Partition: true, Features: []*schema.Feature{
			opt("title", schema.KindProperty, schema.TypeString, false),
			opt("shapes", schema.KindContainment, "Shape", true),
			opt("archive", schema.KindContainment, "Shape", true),
			opt("favorite", schema.KindReference, "Shape", false),
			opt("links", schema.KindReference, "Shape", true),
		}},
		&schema.Classifier{Key: "Shape", Features: []*schema.Feature{
			{Key: "name", Kind: schema.KindProperty, Type: schema.TypeString},
			opt("size", schema.KindProperty, schema.TypeInteger, false),
			opt("parts", schema.KindContainment, "Shape", true),
		}},
		&schema.Classifier{Key: "Circle", Extends: "Shape", Features: []*schema.Feature{
			opt("r", schema.KindProperty, schema.TypeInteger, false),
			opt("center", schema.KindContainment, "Coord", false),
		}},
		&schema.Classifier{Key: "Line", Extends: "Shape", Features: []*schema.Feature{
			opt("start", schema.KindContainment, "Coord", false),
			opt("end", schema.KindContainment, "Coord", false),
		}},
		&schema.Classifier{Key: "Polygon", Extends: "Shape", Features: []*schema.Feature{
			{Key: "points", Kind: schema.KindContainment, Type: "Coord", Multiple: true},
		}},
		&schema.Classifier{Key: "Coord", Features: []*schema.Feature{
			opt("x", schema.KindProperty, schema.TypeInteger, false),
			opt("y", schema.KindProperty, schema.TypeInteger, false),
		}},
		&schema.Classifier{Key: "Documentation", Annotation: true, Features: []*schema.Feature{
			opt("text", schema.KindProperty, schema.TypeString, false),
		}},
		&schema.Classifier{Key: "BillOfMaterials", Annotation: true, Features: []*schema.Feature{
			opt("materials", schema.KindReference, "Shape", true),
			opt("altGroups", schema.KindContainment, "MaterialGroup", true),
			opt("defaultGroup", schema.KindContainment, "MaterialGroup", false),
		}},
		&schema.Classifier{Key: "MaterialGroup", Features: []*schema.Feature{
			opt("matterState", schema.KindProperty, schema.TypeString, false),
			opt("materials", schema.KindReference, "Shape", true),
			opt("defaultShape", schema.KindContainment, "Shape", false),
		}},
	)
}

// NewForest returns a forest over Language holding one registered
// Geometry partition with id "geo"
func NewForest(label string) *graph.Forest {
	f := graph.NewForest(Language(), label)
	f.MustNode("Geometry", "geo")
	if err := f.AddPartition("geo"); err != nil {
		panic(err)
	}
	return f
}

// Nodes creates detached nodes of one classifier
func Nodes(f *graph.Forest, classifier string, ids ...string) {
	for _, id := range ids {
		f.MustNode(classifier, id)
	}
}

// Must fails loudly on a setup error
func Must(err error) {
	if err != nil {
		panic(err)
	}
}
