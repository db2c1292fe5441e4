package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowbench/rowbench/internal/table"
)

func TestNewSearchCommand(t *testing.T) {
	cmd := NewSearchCommand()

	assert.Equal(t, "search column=value ...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewAddCommand(t *testing.T) {
	cmd := NewAddCommand()

	assert.Equal(t, "add column=value ...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewNextIDCommand(t *testing.T) {
	cmd := NewNextIDCommand()

	assert.Equal(t, "next-id", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewDoctorCommand(t *testing.T) {
	cmd := NewDoctorCommand()

	assert.Equal(t, "doctor", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("json"), "flag json should exist")
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "single assignment",
			args: []string{"name=smith"},
			want: map[string]string{"name": "smith"},
		},
		{
			name: "value may contain equals",
			args: []string{"note=a=b"},
			want: map[string]string{"note": "a=b"},
		},
		{
			name: "empty value allowed",
			args: []string{"name="},
			want: map[string]string{"name": ""},
		},
		{
			name:    "missing equals",
			args:    []string{"name"},
			wantErr: true,
		},
		{
			name:    "empty column",
			args:    []string{"=x"},
			wantErr: true,
		},
		{
			name:    "duplicate column",
			args:    []string{"name=a", "name=b"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderRows_Plain(t *testing.T) {
	var buf bytes.Buffer
	rows := []table.Row{
		{"id": int64(2), "name": "Maria"},
		{"id": int64(1), "name": "Johnny"},
	}

	require.NoError(t, renderRows(&buf, "plain", []string{"id", "name"}, rows))

	assert.Equal(t, "id\tname\n2\tMaria\n1\tJohnny\n", buf.String())
}

func TestRenderRows_Table(t *testing.T) {
	var buf bytes.Buffer
	rows := []table.Row{{"id": int64(1), "name": "Johnny"}}

	require.NoError(t, renderRows(&buf, "table", []string{"id", "name"}, rows))

	out := buf.String()
	assert.Contains(t, out, "Johnny")
	assert.Contains(t, out, "(1 rows)")
}

func TestRenderRows_JSON(t *testing.T) {
	var buf bytes.Buffer
	rows := []table.Row{{"id": int64(1), "name": "Johnny"}}

	require.NoError(t, renderRows(&buf, "json", []string{"id", "name"}, rows))

	assert.Contains(t, buf.String(), `"name": "Johnny"`)
}

func TestRenderRows_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer

	err := renderRows(&buf, "yaml", []string{"id"}, nil)

	assert.Error(t, err)
}
