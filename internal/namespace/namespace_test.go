package namespace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/hintgraph/internal/parse"
)

func mustParse(t *testing.T, source string) *parse.Tree {
	t.Helper()
	tree, err := parse.ParseSource(context.Background(), []byte(source))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestTrackerQualified(t *testing.T) {
	t.Parallel()

	tr := NewTracker("shop")
	assert.Equal(t, "shop", tr.Qualified())
	assert.Equal(t, "shop.f", tr.Qualified("f"))

	tr.Push("Cart", Class)
	tr.Push("add_item", Function)
	assert.Equal(t, "shop.Cart.add_item", tr.Qualified())
	assert.Equal(t, "shop.Cart.add_item.qty", tr.Qualified("qty"))
	assert.Equal(t, "shop", tr.Module())
	assert.Equal(t, "Cart", tr.EnclosingClass())
	assert.Equal(t, "shop.Cart", tr.WithoutFunction())
	assert.Equal(t, "shop", tr.WithoutFunctionAndClass())
	assert.Equal(t, "shop.Cart.total", tr.WithoutFunctionAndClass(tr.EnclosingClass(), "total"))

	tr.Pop()
	tr.Pop()
	tr.Pop()
	assert.Equal(t, 1, tr.Depth(), "module segment is never popped")
	assert.Equal(t, "", tr.EnclosingClass())
}

func TestTrackerNestedFunctions(t *testing.T) {
	t.Parallel()

	tr := NewTracker("m")
	tr.Push("Outer", Class)
	tr.Push("method", Function)
	tr.Push("helper", Function)

	assert.Equal(t, "m.Outer.method.helper", tr.Qualified())
	assert.Equal(t, "m.Outer", tr.WithoutFunction())
	assert.Equal(t, "m", tr.WithoutFunctionAndClass())
}

func TestTrackerModuleLevel(t *testing.T) {
	t.Parallel()

	tr := NewTracker("m")
	tr.Push("run", Function)
	assert.Equal(t, "m", tr.WithoutFunction())
	assert.Equal(t, "m", tr.WithoutFunctionAndClass())
	assert.Equal(t, "m.go", tr.WithoutFunction("go"))
}

func TestModuleName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		path   string
		from   ModuleSource
		want   string
	}{
		{"docstring", "\"\"\"shop\"\"\"\ndef f():\n    pass\n", "a/b.py", FromDocstring, "shop"},
		{"single quoted", "'cart'\n", "a/b.py", FromDocstring, "cart"},
		{"no docstring", "def f():\n    pass\n", "a/b.py", FromDocstring, DefaultModule},
		{"empty docstring", "\"\"\n", "a/b.py", FromDocstring, DefaultModule},
		{"path", "\"\"\"shop\"\"\"\n", "pkg/orders.py", FromPath, "orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree := mustParse(t, tt.source)
			assert.Equal(t, tt.want, ModuleName(tree, tt.path, tt.from))
		})
	}
}

func TestImportTable(t *testing.T) {
	t.Parallel()

	source := `import os
import a.b.c
import numpy as np
from collections import OrderedDict
from shop.cart import Cart as C, total
from . import sibling
from .pkg import (thing, other as o)
from typing import *
`
	tree := mustParse(t, source)
	table := NewImportTable()
	root := tree.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		table.Record(root.NamedChild(i), tree.Source())
	}

	want := map[string]string{
		"os":          "os",
		"c":           "a.b.c",
		"np":          "numpy",
		"OrderedDict": "collections.OrderedDict",
		"C":           "shop.cart.Cart",
		"total":       "shop.cart.total",
		"sibling":     ".sibling",
		"thing":       ".pkg.thing",
		"o":           ".pkg.other",
	}
	for alias, path := range want {
		got, ok := table.Lookup(alias)
		if assert.True(t, ok, "alias %q missing", alias) {
			assert.Equal(t, path, got, "alias %q", alias)
		}
	}
	assert.Equal(t, len(want), table.Len())

	_, ok := table.Lookup("Cart")
	assert.False(t, ok, "aliased name must not be bound under its original name")
}

func TestImportTableIgnoresOtherNodes(t *testing.T) {
	t.Parallel()

	tree := mustParse(t, "x = 1\n")
	table := NewImportTable()
	table.Record(tree.Root().NamedChild(0), tree.Source())
	assert.Equal(t, 0, table.Len())
}
