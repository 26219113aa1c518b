package template

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stagecraft/tplmerge/ir"
)

const twoInputs = `
type: Custom
spec:
  script: <+input>
  timeout: <+input>
  shell: Bash
`

const twoInputsDoc = `
stage:
  identifier: s1
  template:
    templateRef: two
    templateInputs:
      spec:
        script: echo hi
        timeout: 1m
`

func countInputs(n *ir.Node) int {
	if n == nil {
		return 0
	}
	if n.Type.IsLeaf() {
		return 1
	}
	c := 0
	for _, v := range n.Values {
		c += countInputs(v)
	}
	return c
}

func TestRefreshEndToEnd(t *testing.T) {
	st := &testStore{}
	e := st.add(t, accScope, "two", "1", true, twoInputs)
	doc := mustParse(t, twoInputsDoc)

	res, err := NewResolver(st).Resolve(context.Background(), doc, accScope, Options{})
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, res.Merged, mustParse(t, `
stage:
  identifier: s1
  type: Custom
  spec:
    script: echo hi
    timeout: 1m
    shell: Bash
`))

	e.Body = mustParse(t, `
type: Custom
spec:
  script: <+input>
  timeout: 10m
  shell: Bash
`)
	refreshed, err := NewRefresher(st, nil).Refresh(context.Background(), doc, accScope, false)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, refreshed, mustParse(t, `
stage:
  identifier: s1
  template:
    templateRef: two
    templateInputs:
      spec:
        script: echo hi
`))
	inputs, err := refreshed.GetKPath("stage.template.templateInputs")
	if err != nil {
		t.Fatal(err)
	}
	if n := countInputs(inputs); n != 1 {
		t.Errorf("expected one input field, got %d", n)
	}
	assertEqual(t, doc, mustParse(t, twoInputsDoc))
}

func TestRefreshFixedPoint(t *testing.T) {
	st := &testStore{}
	st.add(t, accScope, "two", "1", true, twoInputs)
	doc := mustParse(t, twoInputsDoc)
	r := NewRefresher(st, nil)

	once, err := r.Refresh(context.Background(), doc, accScope, false)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, once, doc)
	twice, err := r.Refresh(context.Background(), once, accScope, false)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, twice, once)
}

func TestRefreshDoesNotAddAddressKeys(t *testing.T) {
	st := &testStore{}
	st.add(t, accScope, "stageTpl", "v1", true, scriptStage)
	st.add(t, accScope, "steps", "1", true, `
type: Custom
steps:
  - step:
      identifier: a
      type: ShellScript
      spec:
        script: <+input>
`)
	r := NewRefresher(st, nil)
	for _, text := range []string{
		pipelineDoc,
		`
stage:
  identifier: s2
  template:
    templateRef: steps
    templateInputs:
      steps:
        - step:
            spec:
              script: make
`,
	} {
		doc := mustParse(t, text)
		res, err := r.Refresh(context.Background(), doc, projScope, false)
		if err != nil {
			t.Fatal(err)
		}
		assertEqual(t, res, doc)
	}
}

func TestRefreshAddsPlaceholders(t *testing.T) {
	st := &testStore{}
	st.add(t, accScope, "two", "1", true, `
type: Custom
spec:
  script: <+input>
  timeout: <+input>
  image: <+input>.allowedValues(alpine,debian)
`)
	res, err := NewRefresher(st, nil).Refresh(context.Background(), mustParse(t, twoInputsDoc), accScope, false)
	if err != nil {
		t.Fatal(err)
	}
	inputs, err := res.GetKPath("stage.template.templateInputs.spec")
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, f := range inputs.Fields {
		keys = append(keys, f.String)
	}
	if diff := cmp.Diff([]string{"script", "timeout", "image"}, keys); diff != "" {
		t.Errorf("key order (-want +got):\n%s", diff)
	}
	if img := ir.Get(inputs, "image"); img.String != "<+input>.allowedValues(alpine,debian)" {
		t.Errorf("image = %q", img.String)
	}
	if s := ir.Get(inputs, "script"); s.String != "echo hi" {
		t.Errorf("script = %q", s.String)
	}
}

func TestRefreshNoInputs(t *testing.T) {
	st := &testStore{}
	st.add(t, accScope, "two", "1", true, "type: Custom\nspec:\n  script: echo\n")
	res, err := NewRefresher(st, nil).Refresh(context.Background(), mustParse(t, twoInputsDoc), accScope, false)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, res, mustParse(t, "stage:\n  identifier: s1\n  template:\n    templateRef: two\n"))
}

func TestRefreshNested(t *testing.T) {
	st := &testStore{}
	st.add(t, accScope, "stepTpl", "1", true, `
type: ShellScript
spec:
  script: <+input>
  image: <+input>
`)
	st.add(t, accScope, "stageTpl", "1", true, `
type: Custom
steps:
  - step:
      identifier: st1
      template:
        templateRef: stepTpl
        templateInputs:
          spec:
            script: <+input>
`)
	doc := mustParse(t, `
stage:
  identifier: s1
  template:
    templateRef: stageTpl
    templateInputs:
      steps:
        - step:
            identifier: st1
            template:
              templateRef: stepTpl
              templateInputs:
                spec:
                  script: make
                  old: x
`)
	res, err := NewRefresher(st, nil).Refresh(context.Background(), doc, accScope, false)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, res, mustParse(t, `
stage:
  identifier: s1
  template:
    templateRef: stageTpl
    templateInputs:
      steps:
        - step:
            identifier: st1
            template:
              templateRef: stepTpl
              templateInputs:
                spec:
                  script: make
                  image: <+input>
`))
}

func TestRefreshMergeConflict(t *testing.T) {
	st := &testStore{}
	st.add(t, accScope, "t", "1", true, "spec:\n  script: <+input>\n")
	r := NewRefresher(st, nil)

	_, err := r.Refresh(context.Background(), mustParse(t, `
stage:
  template:
    templateRef: t
    templateInputs:
      spec: fixed
`), accScope, false)
	if diff := cmp.Diff([]string{ErrMergeConflict.Error()}, errorKinds(t, err)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	res, err := r.Refresh(context.Background(), mustParse(t, `
stage:
  template:
    templateRef: t
    templateInputs:
      spec: <+input>
`), accScope, false)
	if err != nil {
		t.Fatal(err)
	}
	spec, _ := res.GetKPath("stage.template.templateInputs.spec.script")
	if spec == nil || spec.String != InputMarker {
		t.Errorf("expression block not replaced by skeleton: %s", docString(res))
	}
}

func TestRefreshErrors(t *testing.T) {
	st := &testStore{}
	st.add(t, accScope, "loop", "1", true, "inner:\n  template:\n    templateRef: loop\n    templateInputs:\n      x: <+input>\n")
	r := NewRefresher(st, nil)

	_, err := r.Refresh(context.Background(), mustParse(t, "a:\n  template:\n    templateRef: nope\nb:\n  template:\n    versionLabel: v1\n"), accScope, false)
	if diff := cmp.Diff([]string{ErrInvalidReference.Error(), ErrTemplateNotFound.Error()}, errorKinds(t, err)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	_, err = r.Refresh(context.Background(), mustParse(t, "a:\n  template:\n    templateRef: loop\n"), accScope, false)
	if !errors.Is(err, ErrRecursionLimit) {
		t.Errorf("expected recursion limit, got %v", err)
	}
}

type fakeReconciler struct {
	scope ScopeRef
	doc   string
	reply string
	err   error
}

func (f *fakeReconciler) Reconcile(ctx context.Context, accountID, orgID, projectID, document string) (string, error) {
	f.scope = ScopeRef{Account: accountID, Org: orgID, Project: projectID}
	f.doc = document
	return f.reply, f.err
}

func TestRefreshCrossService(t *testing.T) {
	st := &testStore{}
	st.add(t, accScope, "two", "1", true, twoInputs)
	remote := &fakeReconciler{reply: "stage:\n  reconciled: true\n"}
	res, err := NewRefresher(st, remote).Refresh(context.Background(), mustParse(t, twoInputsDoc), projScope, true)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, res, mustParse(t, remote.reply))
	if remote.scope != projScope {
		t.Errorf("reconciled in %v", remote.scope)
	}
	assertEqual(t, mustParse(t, remote.doc), mustParse(t, twoInputsDoc))

	remote = &fakeReconciler{err: errors.New("unavailable")}
	_, err = NewRefresher(st, remote).Refresh(context.Background(), mustParse(t, twoInputsDoc), accScope, true)
	if !errors.Is(err, ErrRemoteReconciliation) || !errors.Is(err, remote.err) {
		t.Errorf("expected remote reconciliation error, got %v", err)
	}

	remote = &fakeReconciler{reply: "a: [unclosed\n"}
	_, err = NewRefresher(st, remote).Refresh(context.Background(), mustParse(t, twoInputsDoc), accScope, true)
	if !errors.Is(err, ErrRemoteReconciliation) {
		t.Errorf("expected remote reconciliation error, got %v", err)
	}

	_, err = NewRefresher(st, nil).Refresh(context.Background(), mustParse(t, twoInputsDoc), accScope, true)
	if !errors.Is(err, ErrRemoteReconciliation) {
		t.Errorf("expected remote reconciliation error without reconciler, got %v", err)
	}
}

func TestRefreshSkipsRemoteOnLocalErrors(t *testing.T) {
	remote := &fakeReconciler{reply: "{}"}
	_, err := NewRefresher(&testStore{}, remote).Refresh(context.Background(), mustParse(t, twoInputsDoc), accScope, true)
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected template not found, got %v", err)
	}
	if remote.doc != "" {
		t.Error("remote called despite local errors")
	}
}
