// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/benchmeasure/measure"
)

// flat is a triple rendered for comparison.
type flat struct {
	Path   string
	Value  string
	Metric string
}

func read(t *testing.T, r Reader) ([]flat, error) {
	t.Helper()
	var out []flat
	for r.Scan() {
		tr := r.Triple()
		m := tr.Metric
		out = append(out, flat{strings.Join(tr.Path, "|"), tr.Value, m.Name + "/" + m.Unit + "/" + m.Better})
	}
	return out, r.Err()
}

func readString(t *testing.T, f Format, input string) ([]flat, error) {
	t.Helper()
	return read(t, f.NewReader(strings.NewReader(input), "input"))
}

func readFile(t *testing.T, f Format, name string) []flat {
	t.Helper()
	fsys := afero.NewReadOnlyFs(afero.NewOsFs())
	file, err := Open(fsys, f, filepath.Join("testdata", name))
	require.NoError(t, err)
	defer file.Close()
	got, err := read(t, file)
	require.NoError(t, err)
	return got
}

func TestOpenMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := Open(fsys, XUnit{Better: "desc"}, "nope.xml")
	require.ErrorIs(t, err, ErrNotExist)
	assert.Contains(t, err.Error(), "nope.xml")
	assert.Contains(t, err.Error(), "xunit")
	assert.True(t, errors.Is(err, ErrNotExist))

	require.NoError(t, fsys.MkdirAll("dir", 0o755))
	_, err = Open(fsys, XUnit{Better: "desc"}, "dir")
	assert.ErrorContains(t, err, "directory")
}

func TestCSV(t *testing.T) {
	f := CSV{Metric: "Duration", Unit: "ms", Better: "desc"}
	got, err := readString(t, f, "a,b,10\nc,d,20\n")
	require.NoError(t, err)
	assert.Equal(t, []flat{
		{"a|b", "10", "Duration/ms/desc"},
		{"c|d", "20", "Duration/ms/desc"},
	}, got)

	// Variable column counts.
	got, err = readString(t, f, "a,1\nx,y,z,2\n")
	require.NoError(t, err)
	assert.Equal(t, []flat{
		{"a", "1", "Duration/ms/desc"},
		{"x|y|z", "2", "Duration/ms/desc"},
	}, got)
}

func TestCSVHeader(t *testing.T) {
	f := CSV{Metric: "Size", Unit: "B", Better: "desc", HasHeader: true}
	// The header is skipped even when it looks like data.
	got, err := readString(t, f, "a,1\nb,2\n")
	require.NoError(t, err)
	assert.Equal(t, []flat{{"b", "2", "Size/B/desc"}}, got)

	got, err = readString(t, f, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVErrors(t *testing.T) {
	f := CSV{Metric: "Size", Unit: "B", Better: "desc"}
	got, err := readString(t, f, "a,1\nlonely\nb,2\n")
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 2, serr.Line)
	assert.Equal(t, "input", serr.FileName)
	assert.Len(t, got, 1)

	_, err = readString(t, f, "a,\"unterminated\n")
	assert.ErrorAs(t, err, &serr)
}

func TestXUnit(t *testing.T) {
	got := readFile(t, XUnit{Better: "desc"}, "xunit.xml")
	list := "System|Collections|Tests|Perf_List|Add(size: 1000)"
	assert.Equal(t, []flat{
		{list, "1.0", "Duration/msec/desc"},
		{list, "3", "GC Count/count/desc"},
		{list, "4", "GC Count/count/desc"},
		{list, "2.0", "Duration/msec/desc"},
		{"Bench|Simple", "0x10", "Duration/msec/desc"},
	}, got)
}

func TestXUnitIterations(t *testing.T) {
	const input = `<assemblies><assembly><collection>
<test type="T" name="T.M">
<performance>
<metrics><Duration displayName="Duration" unit="ms"/></metrics>
<iterations><iteration Duration="1.0"/><iteration Duration="2.0"/></iterations>
</performance>
</test>
</collection></assembly></assemblies>`
	got, err := readString(t, XUnit{Better: "asc"}, input)
	require.NoError(t, err)
	assert.Equal(t, []flat{
		{"T|M", "1.0", "Duration/ms/asc"},
		{"T|M", "2.0", "Duration/ms/asc"},
	}, got)
}

func TestXUnitTestNames(t *testing.T) {
	const input = `<assemblies><assembly><collection>
<test type="N.T" name="N.T.M(x: 1.5)">
<performance>
<metrics><D displayName="Duration" unit="ms"/></metrics>
<iterations><iteration D="1"/></iterations>
</performance>
</test>
<test type="N.T" name="Other.M(y: 2.5)">
<performance>
<metrics><D displayName="Duration" unit="ms"/></metrics>
<iterations><iteration D="2"/></iterations>
</performance>
</test>
</collection></assembly></assemblies>`
	got, err := readString(t, XUnit{Better: "desc"}, input)
	require.NoError(t, err)
	// The type is split on '.', the rest of the name is one leaf even
	// when it contains dots. A name not qualified by its type is
	// kept whole.
	assert.Equal(t, []flat{
		{"N|T|M(x: 1.5)", "1", "Duration/ms/desc"},
		{"N|T|Other.M(y: 2.5)", "2", "Duration/ms/desc"},
	}, got)
}

func TestXUnitMetricRedeclared(t *testing.T) {
	const input = `<assemblies><assembly><collection>
<test type="T" name="T.M">
<performance>
<metrics><D displayName="Duration" unit="ms"/><D displayName="Elapsed" unit="us"/></metrics>
<iterations><iteration D="3"/></iterations>
</performance>
</test>
</collection></assembly></assemblies>`
	got, err := readString(t, XUnit{Better: "desc"}, input)
	require.NoError(t, err)
	assert.Equal(t, []flat{{"T|M", "3", "Elapsed/us/desc"}}, got)
}

func TestXUnitErrors(t *testing.T) {
	var serr *SyntaxError

	_, err := readString(t, XUnit{Better: "asc"}, `<assemblies><assembly><collection><test name="x"/></collection></assembly></assemblies>`)
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "type")

	_, err = readString(t, XUnit{Better: "asc"}, `<assemblies><assembly>`)
	require.ErrorAs(t, err, &serr)

	_, err = readString(t, XUnit{Better: "asc"}, `<assemblies><assembly></collection>`)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Line)
}

func TestScenarioXUnit(t *testing.T) {
	got := readFile(t, ScenarioXUnit{Better: "desc", Separator: "."}, "scenario.xml")
	first := "JitBench|Web|MusicStore|Startup|First Request"
	assert.Equal(t, []flat{
		{first, "512.5", "Duration/ms/desc"},
		{first, "498", "Duration/ms/desc"},
		{"JitBench|Web|MusicStore|Steady State", "12", "Duration/ms/desc"},
	}, got)

	got = readFile(t, ScenarioXUnit{Better: "desc"}, "scenario.xml")
	assert.Equal(t, "JitBench.Web|MusicStore|Startup|First Request", got[0].Path)
}

func TestScenarioXUnitNoName(t *testing.T) {
	_, err := readString(t, ScenarioXUnit{Better: "desc"}, `<ScenarioBenchmark Namespace="N"><Tests/></ScenarioBenchmark>`)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "Name")
}

func TestCounters(t *testing.T) {
	got := readFile(t, Counters{Better: "desc"}, "counters.xml")
	assert.Equal(t, []flat{
		{"Startup", " 12.5 ", "Elapsed Time/ms/desc"},
		{"Startup", "4096", "Working Set/bytes/desc"},
		{"Shutdown", "3", "Elapsed Time/ms/desc"},
	}, got)

	got = readFile(t, Counters{Better: "desc", Counters: []string{"Elapsed Time"}}, "counters.xml")
	assert.Equal(t, []flat{
		{"Startup", " 12.5 ", "Elapsed Time/ms/desc"},
		{"Shutdown", "3", "Elapsed Time/ms/desc"},
	}, got)
}

func TestCountersLegacy(t *testing.T) {
	f := Counters{Better: "asc", Legacy: true}
	assert.Equal(t, "legacy-counter-xml", f.Name())
	got := readFile(t, f, "counters-legacy.xml")
	assert.Equal(t, []flat{
		{"Startup", "12.5", "Elapsed Time/ms/asc"},
		{"Startup", "4096", "Working Set/bytes/asc"},
	}, got)

	_, err := readString(t, f, `<ScenarioResults><ScenarioResult Name="S"><CounterResult Name="c" Units="u"/></ScenarioResult></ScenarioResults>`)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "Value")
}

func TestBenchmarkDotNet(t *testing.T) {
	got := readFile(t, BenchmarkDotNet{}, "bdn.json")
	add := "System|Collections|Tests|Perf_List|Add(size: 1000)"
	assert.Equal(t, []flat{
		{add, "1.5", "Duration/ms/desc"},
		{add, "500000", "Duration of single invocation/ns/desc"},
		{add, "3", "Duration/ms/desc"},
		{add, "1e+06", "Duration of single invocation/ns/desc"},
		{add, "1024", "Allocated/B/desc"},
		{add, "17", "Cache Misses/Count/desc"},
		{add, "42", "Throughput/ops/asc"},
		{"Micro|Noop", "0.002", "Duration/ms/desc"},
		{"Micro|Noop", "2", "Duration of single invocation/ns/desc"},
	}, got)
}

func TestBenchmarkDotNetScenario(t *testing.T) {
	const input = `{"Benchmarks":[{"Namespace":"N","Type":"T","Method":"M","FullName":"N.T.M",
"Measurements":[{"IterationMode":"Workload","IterationStage":"Result","LaunchIndex":1,"IterationIndex":1,"Operations":3,"Nanoseconds":1500000}]}]}`
	r := BenchmarkDotNet{}.NewReader(strings.NewReader(input), "in.json")
	var got []measure.Triple
	for r.Scan() {
		tr := *r.Triple()
		v, err := measure.ParseValue(tr.Value)
		require.NoError(t, err)
		switch tr.Metric.Name {
		case "Duration":
			assert.Equal(t, 1.5, v)
			assert.Equal(t, "ms", tr.Metric.Unit)
		case "Duration of single invocation":
			assert.Equal(t, 500000.0, v)
			assert.Equal(t, "ns", tr.Metric.Unit)
		}
		assert.Equal(t, []string{"N", "T", "M"}, tr.Path)
		got = append(got, tr)
	}
	require.NoError(t, r.Err())
	assert.Len(t, got, 2)
}

func TestBenchmarkDotNetErrors(t *testing.T) {
	for name, input := range map[string]string{
		"not object":     `[]`,
		"truncated":      `{"Benchmarks":[{"Type":"T","Method":"M"}`,
		"no type":        `{"Benchmarks":[{"Method":"M"}]}`,
		"zero ops":       `{"Benchmarks":[{"Type":"T","Method":"M","Measurements":[{"IterationMode":"Workload","IterationStage":"Result","Operations":0,"Nanoseconds":1}]}]}`,
		"benchmarks obj": `{"Benchmarks":{}}`,
	} {
		_, err := readString(t, BenchmarkDotNet{}, input)
		var serr *SyntaxError
		assert.ErrorAs(t, err, &serr, name)
	}

	got, err := readString(t, BenchmarkDotNet{}, `{"Title":"x","Benchmarks":[]}`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMobile(t *testing.T) {
	got := readFile(t, Mobile{}, "mobile.json")
	assert.Equal(t, []flat{
		{"binarytrees", "1234.5", "Execution Time/ms/desc"},
		{"binarytrees", "5012345678", "Instructions/Count/desc"},
		{"binarytrees", "7.25", "Memory Integral/MB*Giga-instructions/desc"},
		{"fannkuch", "88", "Execution Time/ms/desc"},
	}, got)
}

func TestMobileErrors(t *testing.T) {
	var serr *SyntaxError
	_, err := readString(t, Mobile{}, `{"runs":[{"benchmark":{"name":"b"},"metrics":{"bogus":1}}]}`)
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Msg, "bogus")

	_, err = readString(t, Mobile{}, `{"runs":[{"benchmark":{"name":"b"},"metrics":{"time":"slow"}}]}`)
	require.ErrorAs(t, err, &serr)

	_, err = readString(t, Mobile{}, `{"runs":[{"metrics":{"time":1}}]}`)
	require.ErrorAs(t, err, &serr)
}

func TestFormatNames(t *testing.T) {
	for _, f := range []Format{
		CSV{}, XUnit{}, ScenarioXUnit{}, Counters{}, Counters{Legacy: true}, BenchmarkDotNet{}, Mobile{},
	} {
		assert.NotEmpty(t, f.Name())
	}
	assert.Equal(t, "scenario-counter-xml", Counters{}.Name())
}

func TestSyntaxError(t *testing.T) {
	assert.Equal(t, "f.xml:3: bad", (&SyntaxError{"f.xml", 3, "bad"}).Error())
	assert.Equal(t, "f.json: bad", (&SyntaxError{"f.json", 0, "bad"}).Error())
}
