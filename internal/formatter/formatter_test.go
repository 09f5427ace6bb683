package formatter

import (
	"context"
	"strings"
	"testing"
	"unicode"
)

func format(t *testing.T, fn Func, src string, opts Options) string {
	t.Helper()
	out, err := fn(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("format %q: %v", src, err)
	}
	return out
}

func assertIdempotent(t *testing.T, fn Func, formatted string, opts Options) {
	t.Helper()
	if again := format(t, fn, formatted, opts); again != formatted {
		t.Fatalf("second pass changed output:\n%q\n%q", formatted, again)
	}
}

func TestScriptBlock(t *testing.T) {
	opts := DefaultOptions()
	got := format(t, Script, "function f(){a}", opts)
	want := "function f() {\n    a\n}"
	if got != want {
		t.Fatalf("Script = %q, want %q", got, want)
	}
	assertIdempotent(t, Script, got, opts)
}

func TestScriptStatements(t *testing.T) {
	opts := DefaultOptions()
	got := format(t, Script, "var x=1;var y=2;", opts)
	want := "var x = 1;\nvar y = 2;"
	if got != want {
		t.Fatalf("Script = %q, want %q", got, want)
	}
	assertIdempotent(t, Script, got, opts)
}

func TestScriptIfElse(t *testing.T) {
	opts := DefaultOptions()
	got := format(t, Script, "if(a){b()}else{c()}", opts)
	want := "if (a) {\n    b()\n} else {\n    c()\n}"
	if got != want {
		t.Fatalf("Script = %q, want %q", got, want)
	}
	assertIdempotent(t, Script, got, opts)
}

func TestScriptTrailingComment(t *testing.T) {
	got := format(t, Script, "a; // note\nb;", DefaultOptions())
	want := "a; // note\nb;"
	if got != want {
		t.Fatalf("Script = %q, want %q", got, want)
	}
}

func TestScriptPreserveNewlines(t *testing.T) {
	opts := DefaultOptions()
	if got := format(t, Script, "a;\n\n\nb;", opts); got != "a;\n\nb;" {
		t.Fatalf("Script preserve = %q", got)
	}
	opts.PreserveNewlines = false
	if got := format(t, Script, "a;\n\n\nb;", opts); got != "a;\nb;" {
		t.Fatalf("Script no preserve = %q", got)
	}
}

func TestScriptIndentOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.IndentSize = 2
	if got := format(t, Script, "function f(){a}", opts); got != "function f() {\n  a\n}" {
		t.Fatalf("Script indent 2 = %q", got)
	}
	opts.IndentSize = 1
	opts.IndentChar = '\t'
	if got := format(t, Script, "function f(){a}", opts); got != "function f() {\n\ta\n}" {
		t.Fatalf("Script tab indent = %q", got)
	}
}

func TestEndWithNewline(t *testing.T) {
	opts := DefaultOptions()
	opts.EndWithNewline = true
	if got := format(t, Script, "a;", opts); got != "a;\n" {
		t.Fatalf("Script = %q, want %q", got, "a;\n")
	}
	if got := format(t, Script, "", opts); got != "" {
		t.Fatalf("Script empty = %q, want empty", got)
	}
}

func TestEmptyInput(t *testing.T) {
	for name, fn := range map[string]Func{"script": Script, "style": Style, "markup": Markup} {
		if got := format(t, fn, "", DefaultOptions()); got != "" {
			t.Fatalf("%s empty = %q, want empty", name, got)
		}
	}
}

func TestStyleDeclarations(t *testing.T) {
	opts := DefaultOptions()
	got := format(t, Style, "a{color:red;background:blue}", opts)
	want := "a {\n    color: red;\n    background: blue\n}"
	if got != want {
		t.Fatalf("Style = %q, want %q", got, want)
	}
	assertIdempotent(t, Style, got, opts)
}

func TestStyleNewlineBetweenRules(t *testing.T) {
	opts := DefaultOptions()
	src := "a{color:red}b{color:blue}"
	want := "a {\n    color: red\n}\n\nb {\n    color: blue\n}"
	got := format(t, Style, src, opts)
	if got != want {
		t.Fatalf("Style = %q, want %q", got, want)
	}
	assertIdempotent(t, Style, got, opts)

	opts.NewlineBetweenRules = false
	want = "a {\n    color: red\n}\nb {\n    color: blue\n}"
	if got := format(t, Style, src, opts); got != want {
		t.Fatalf("Style no blank = %q, want %q", got, want)
	}
}

func TestStyleSelectorSeparator(t *testing.T) {
	opts := DefaultOptions()
	if got := format(t, Style, "h1,h2{margin:0}", opts); got != "h1,\nh2 {\n    margin: 0\n}" {
		t.Fatalf("Style = %q", got)
	}
	opts.SelectorSeparatorNewline = false
	if got := format(t, Style, "h1,h2{margin:0}", opts); got != "h1, h2 {\n    margin: 0\n}" {
		t.Fatalf("Style = %q", got)
	}
}

func TestMarkupNesting(t *testing.T) {
	opts := DefaultOptions()
	got := format(t, Markup, "<div><p>hi</p></div>", opts)
	want := "<div>\n    <p>hi</p>\n</div>"
	if got != want {
		t.Fatalf("Markup = %q, want %q", got, want)
	}
	assertIdempotent(t, Markup, got, opts)
}

func TestMarkupInline(t *testing.T) {
	got := format(t, Markup, "<p>Hello   <b>world</b>!</p>", DefaultOptions())
	want := "<p>Hello <b>world</b>!</p>"
	if got != want {
		t.Fatalf("Markup = %q, want %q", got, want)
	}
}

func TestMarkupAttributes(t *testing.T) {
	got := format(t, Markup, `<a  href="x"   class='y'>t</a>`, DefaultOptions())
	want := `<a href="x" class='y'>t</a>`
	if got != want {
		t.Fatalf("Markup = %q, want %q", got, want)
	}
}

func TestMarkupEmbeddedScript(t *testing.T) {
	opts := DefaultOptions()
	got := format(t, Markup, "<script>var a=1;</script>", opts)
	want := "<script>\n    var a = 1;\n</script>"
	if got != want {
		t.Fatalf("Markup = %q, want %q", got, want)
	}
	assertIdempotent(t, Markup, got, opts)
}

func TestMarkupEmbeddedStyle(t *testing.T) {
	got := format(t, Markup, "<style>a{color:red}</style>", DefaultOptions())
	want := "<style>\n    a {\n        color: red\n    }\n</style>"
	if got != want {
		t.Fatalf("Markup = %q, want %q", got, want)
	}
}

func TestDedent(t *testing.T) {
	got := dedent("\n    a\n      b\n\n    c\n")
	want := "a\n  b\n\nc"
	if got != want {
		t.Fatalf("dedent = %q, want %q", got, want)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"javascript", "CSS", " html "} {
		if _, ok := Lookup(name); !ok {
			t.Fatalf("Lookup(%q) not found", name)
		}
	}
	if _, ok := Lookup("prettier"); ok {
		t.Fatalf("Lookup(prettier) found")
	}
}

func TestMarkupKeepsPreformattedText(t *testing.T) {
	opts := DefaultOptions()
	for _, src := range []string{
		"<pre>  a\n   b  </pre>",
		"<textarea>  x  </textarea>",
		"<p>see <textarea>\n  y\n</textarea></p>",
	} {
		got := format(t, Markup, src, opts)
		if got != src {
			t.Fatalf("Markup(%q) = %q, want unchanged", src, got)
		}
	}

	got := format(t, Markup, "<div><pre> a\n b </pre></div>", opts)
	want := "<div>\n    <pre> a\n b </pre>\n</div>"
	if got != want {
		t.Fatalf("Markup = %q, want %q", got, want)
	}
	assertIdempotent(t, Markup, got, opts)
}

func TestMarkupScriptTemplateLiteral(t *testing.T) {
	opts := DefaultOptions()
	got := format(t, Markup, "<div><script>var s = `a\n  b  \nc`;</script></div>", opts)
	want := "<div>\n    <script>\n        var s = `a\n  b  \nc`;\n    </script>\n</div>"
	if got != want {
		t.Fatalf("Markup = %q, want %q", got, want)
	}
	assertIdempotent(t, Markup, got, opts)
}

func TestScriptTemplateLiteral(t *testing.T) {
	opts := DefaultOptions()
	got := format(t, Script, "function f(){return `x\n   y  `}", opts)
	want := "function f() {\n    return `x\n   y  `\n}"
	if got != want {
		t.Fatalf("Script = %q, want %q", got, want)
	}
	assertIdempotent(t, Script, got, opts)
}

func TestScriptJSX(t *testing.T) {
	opts := DefaultOptions()
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"var x = <div>hi {a}</div>", "var x = <div>hi {a}</div>"},
		{"var x=<br/>;", "var x = <br/>;"},
		{"var el=<ul>\n  <li>a</li>\n</ul>;", "var el = <ul>\n  <li>a</li>\n</ul>;"},
	} {
		got := format(t, Script, tc.src, opts)
		if got != tc.want {
			t.Fatalf("Script(%q) = %q, want %q", tc.src, got, tc.want)
		}
		assertIdempotent(t, Script, got, opts)
	}
}

func nonSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestFormattersOnlyChangeWhitespace(t *testing.T) {
	cases := []struct {
		name string
		fn   Func
		src  string
	}{
		{"script", Script, "function f(a,b){return a+b}\nvar s=`x ${y}`;if(a){b()}else{c()} // end"},
		{"script", Script, "switch(x){case 1:a();break;default:b()}\nvar o={a:1,b:[1,2]};x++;--y;"},
		{"script", Script, "class A{m(){return <p>{this.x}</p>}}"},
		{"style", Style, "a{color:red;background:url(x.png)}@media screen{b{margin:0 auto}}/* c */"},
		{"style", Style, "h1,h2>a:hover{font-family:\"A B\",serif}"},
		{"markup", Markup, `<!DOCTYPE html><html><head><title>T</title></head><body><p class="x">a <b>b</b></p><!-- c --><pre>  p` + "\n" + ` q </pre><script>var a=1;</script></body></html>`},
		{"markup", Markup, "<ul><li>one</li><li>two &amp; three</li></ul><style>a{b:c}</style>"},
	}
	for _, tc := range cases {
		got := format(t, tc.fn, tc.src, DefaultOptions())
		if nonSpace(got) != nonSpace(tc.src) {
			t.Fatalf("%s changed content:\n%q\n%q", tc.name, tc.src, got)
		}
		assertIdempotent(t, tc.fn, got, DefaultOptions())
	}
}
