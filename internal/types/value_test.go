package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_FromInterfaceKinds(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
	}{
		{"null", nil, KindNull},
		{"string", "x", KindString},
		{"number", 1.5, KindNumber},
		{"int", 3, KindNumber},
		{"bool", true, KindBool},
		{"list", []any{"a", 1.0}, KindList},
		{"map", map[string]any{"a": "b"}, KindMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromInterface(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestValue_FromInterfaceRejectsUnknownTypes(t *testing.T) {
	_, err := FromInterface(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ch")
}

func TestValue_JSONSortsMapKeys(t *testing.T) {
	v := Map(map[string]Value{
		"b": Number(2),
		"a": List(String("x"), Bool(false), Null()),
	})
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":["x",false,null],"b":2}`, string(out))
}

func TestValue_UnmarshalNested(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"projects":[{"name":"cli","stars":12}]}`), &v))

	projects := v.Entries()["projects"].Items()
	require.Len(t, projects, 1)
	name, ok := projects[0].Entries()["name"].Str()
	require.True(t, ok)
	assert.Equal(t, "cli", name)

	plain := v.Interface().(map[string]any)
	assert.Equal(t, 12.0, plain["projects"].([]any)[0].(map[string]any)["stars"])
}

func TestValue_Equal(t *testing.T) {
	a := Map(map[string]Value{"x": List(Number(1))})
	b := Map(map[string]Value{"x": List(Number(1))})
	c := Map(map[string]Value{"x": List(Number(2))})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, String("1").Equal(Number(1)))
}
