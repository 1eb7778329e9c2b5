package detection

import (
	"encoding/json"
	"os"
	"testing"

	"phishscan/internal/email"
	"phishscan/internal/extract"
	"phishscan/internal/parsing"
	"phishscan/internal/reference"
)

func sampleMessage(t *testing.T, name string) *Message {
	t.Helper()
	raw, err := os.ReadFile("../../samples/" + name)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	msg := email.Decompose(raw)
	return &Message{Parsed: parsing.Parse(msg), RawEmails: extract.Extract(msg).RawEmails}
}

func shippedLists(t *testing.T) *reference.Lists {
	t.Helper()
	lists, _ := reference.Load(reference.DirPaths("../../reference"), nil)
	return &lists
}

func TestBatteryPhishSample(t *testing.T) {
	b := New(DefaultRules(), nil)
	res, err := b.Run(sampleMessage(t, "phish.eml"), shippedLists(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	counts := map[Category]int{
		CategorySuspiciousLinks:    2,
		CategoryHeaderIssues:       1,
		CategoryRiskyAttachments:   1,
		CategoryAnchorRedirect:     1,
		CategoryTyposquatting:      1,
		CategoryDisplaySpoof:       1,
		CategoryHeaderForgery:      2,
		CategoryDoubleExtension:    1,
		CategoryHTMLForms:          1,
		CategoryClickableImages:    1,
		CategorySocialEngineering:  1,
		CategoryBrandImpersonation: 1,
		CategoryRiskyTLDs:          2,
		CategoryObfuscation:        0,
	}
	for cat, want := range counts {
		if got := res.Count(cat); got != want {
			t.Errorf("%s: got %d findings, want %d", cat, got, want)
		}
	}

	if got := res.ExtraFlags.DoubleExtension[0].Filename; got != "invoice.pdf.exe" {
		t.Errorf("double extension filename: got %q", got)
	}
	if got := res.ExtraFlags.AnchorRedirect[0]; got.DisplayDomain != "www.paypal.com" || got.URLDomain != "login.paypa1-secure.xyz" {
		t.Errorf("anchor redirect: %+v", got)
	}
	methods := []string{res.ExtraFlags.HeaderForgery[0].Method, res.ExtraFlags.HeaderForgery[1].Method}
	if methods[0] != MethodSPF || methods[1] != MethodDMARC {
		t.Errorf("header forgery methods: %v", methods)
	}
}

func TestBatteryHamSample(t *testing.T) {
	b := New(DefaultRules(), nil)
	res, err := b.Run(sampleMessage(t, "ham.eml"), shippedLists(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, d := range b.Detectors() {
		if n := res.Count(Category(d.Name())); n != 0 {
			t.Errorf("%s: expected no findings on ham, got %d", d.Name(), n)
		}
	}
}

func TestBatteryEmptyMessageMarshalsEveryKey(t *testing.T) {
	res, err := New(DefaultRules(), nil).Run(&Message{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		SuspiciousLinks []any          `json:"suspicious_links"`
		HeaderIssues    []any          `json:"header_issues"`
		ExtraFlags      map[string]any `json:"extra_flags"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.SuspiciousLinks == nil || decoded.HeaderIssues == nil {
		t.Errorf("top-level collections should be [] not null: %s", data)
	}
	if len(decoded.ExtraFlags) != 11 {
		t.Errorf("expected 11 extra flag keys, got %d", len(decoded.ExtraFlags))
	}
	for k, v := range decoded.ExtraFlags {
		if v == nil {
			t.Errorf("extra flag %s is null", k)
		}
	}
}

type panicky struct{}

func (panicky) Name() string                                { return "panicky" }
func (panicky) Detect(*Message, *reference.Lists) []Finding { panic("boom") }

func TestBatteryRecoversDetectorPanic(t *testing.T) {
	b := &Battery{detectors: []Detector{panicky{}, doubleExtension{rules: DefaultRules()}}}
	b.logger = New(DefaultRules(), nil).logger

	res, err := b.Run(attachments("invoice.pdf.exe"), nil)
	if err == nil {
		t.Fatal("expected error from panicking detector")
	}
	if res.Count(CategoryDoubleExtension) != 1 {
		t.Errorf("other detectors should still report, got %+v", res)
	}
}

func TestBatteryDeterministicOrder(t *testing.T) {
	b := New(DefaultRules(), nil)
	msg := sampleMessage(t, "phish.eml")
	lists := shippedLists(t)

	first, _ := b.Run(msg, lists)
	want, _ := json.Marshal(first)
	for i := 0; i < 20; i++ {
		res, _ := b.Run(msg, lists)
		got, _ := json.Marshal(res)
		if string(got) != string(want) {
			t.Fatalf("run %d differs:\n got %s\nwant %s", i, got, want)
		}
	}
}
