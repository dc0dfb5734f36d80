package extract

import (
	"errors"
	"reflect"
	"testing"
)

const listingHTML = `<html><body>
<div id="searchCountPages">Page 1 of 3 jobs</div>
<a class="jobtitle" href="/rc/clk?jk=111&amp;from=serp">Go Developer</a>
<a class="jobtitle" href="/rc/clk?jk=222">Backend Engineer</a>
<a class="jobtitle" href="/rc/clk?jk=111&amp;from=serp">Go Developer (again)</a>
<a class="jobtitle" href="https://other.example.com/job/9">External</a>
<a class="jobtitle" href="javascript:void(0)">Broken</a>
<a class="jobtitle" href="#top">Anchor</a>
<a class="jobtitle">No href</a>
</body></html>`

const detailHTML = `<html><body>
<div class="jobsearch-header">
  <h1 class="jobtitle">  Senior   Go
     Engineer </h1>
  <div class="company"><a class="companyLink" href="/cmp/acme">Acme Corp</a></div>
  <div class="location">Austin, TX</div>
  <span class="salaryText">$120,000 - $150,000 a year</span>
  <ul><li class="tag">remote</li><li class="tag">go</li></ul>
</div>
<div class="footer"><span class="location">Ignored, ZZ</span></div>
</body></html>`

func mustParse(t *testing.T, body, base string) *Document {
	t.Helper()
	doc, err := Parse(body, base)
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

func TestDocumentLinks(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, listingHTML, "https://www.indeed.com/jobs?q=go")
	got := doc.Links("a.jobtitle", "href")
	want := []string{
		"https://www.indeed.com/rc/clk?jk=111&from=serp",
		"https://www.indeed.com/rc/clk?jk=222",
		"https://other.example.com/job/9",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if links := ExtractLinks(doc, "a.missing", ""); len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}

func TestDocumentText(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, listingHTML, "")
	text, ok := doc.Text("#searchCountPages")
	if !ok {
		t.Fatal("expected pagination element to be found")
	}
	if text != "Page 1 of 3 jobs" {
		t.Errorf("expected 'Page 1 of 3 jobs', got %q", text)
	}

	if _, ok := doc.Text(".nothing"); ok {
		t.Error("expected missing element to report false")
	}
}

func TestDocumentFields(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, detailHTML, "https://www.indeed.com/viewjob?jk=111")

	tree := Group("",
		Node{
			Name:  "job",
			Scope: ".jobsearch-header",
			Children: []Node{
				Rule("title", ".jobtitle"),
				Rule("location", ".location"),
				Rule("salary", ".salaryText"),
				Rule("date", ".date"),
				{Name: "tags", Selector: ".tag", All: true},
			},
		},
		Group("company",
			Rule("name", ".company"),
			AttrRule("homepage", "a.companyLink", "href"),
		),
	)
	if err := tree.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	rec := ExtractFields(doc, tree)

	tests := []struct {
		field string
		want  string
	}{
		{"job.title", "Senior Go Engineer"},
		{"job.location", "Austin, TX"},
		{"job.salary", "$120,000 - $150,000 a year"},
		{"company.name", "Acme Corp"},
		{"company.homepage", "https://www.indeed.com/cmp/acme"},
	}
	for _, tt := range tests {
		if got := rec.Get(tt.field); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.field, tt.want, got)
		}
	}

	if rec.Has("job.date") {
		t.Errorf("expected missing date to be absent, got %v", rec.Values("job.date"))
	}
	if got := rec.Values("job.tags"); !reflect.DeepEqual(got, []string{"remote", "go"}) {
		t.Errorf("expected both tags, got %v", got)
	}
}

func TestFieldsMissingScope(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, detailHTML, "")
	rec := doc.Fields(Node{Name: "x", Scope: ".absent", Children: []Node{Rule("title", ".jobtitle")}})
	if len(rec) != 0 {
		t.Errorf("expected empty record, got %v", rec)
	}
}

func TestNodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{name: "empty selector", node: Group("g", Rule("title", "  ")), wantErr: ErrEmptySelector},
		{name: "mixed", node: Node{Name: "g", Selector: ".x", Children: []Node{Rule("a", ".a")}}, wantErr: ErrMixedNode},
		{name: "unnamed rule", node: Group("g", Rule("", ".a")), wantErr: ErrUnnamedNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.node.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if err := Group("g", Rule("a", "div[")).Validate(); err == nil {
		t.Error("expected invalid CSS to be rejected")
	}
}

func TestRecordMerge(t *testing.T) {
	t.Parallel()

	r := Record{"a": {"1"}}
	r.Merge(Record{"a": {"2"}, "b": {"3"}})

	if !reflect.DeepEqual(r.Values("a"), []string{"1", "2"}) {
		t.Errorf("expected merged values, got %v", r.Values("a"))
	}
	if !reflect.DeepEqual(r.Fields(), []string{"a", "b"}) {
		t.Errorf("expected sorted field names, got %v", r.Fields())
	}
	if r.Get("missing") != "" {
		t.Error("expected empty string for missing field")
	}
}
