package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	appfs "github.com/biglotteryfund/funding/fs"
)

const (
	pageTemplatesDir = "assets/templates/pages"
	pageTemplateExt  = ".html"
)

// Renderer renders the pages of the site with pongo2 (Jinja/Nunjucks syntax).
// Pages extend the "_" prefixed layouts and include the "_" prefixed partials.
// Page data is handed to templates as plain JSON values: objects are read with their JSON keys.
type Renderer struct {
	pages map[string]*pongo2.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// pageFuncs are the functions every template can call.
// They receive page data as decoded JSON: objects are map[string]interface{}, numbers json.Number.
var pageFuncs = pongo2.Context{
	// t picks the text of a bilingual copy for the locale.
	"t": func(copy, locale *pongo2.Value) string {
		c, _ := copy.Interface().(map[string]interface{})
		l := core.Locale(locale.String())
		return core.Copy{En: plain(c["en"]), Cy: plain(c["cy"])}.In(l)
	},
	// part renders the value found under keys, "" when there is none.
	"part": func(value *pongo2.Value, keys ...*pongo2.Value) string {
		v := value.Interface()
		for _, k := range keys {
			m, ok := v.(map[string]interface{})
			if !ok {
				return ""
			}
			v = m[k.String()]
		}
		return plain(v)
	},
	// sub is the value found under key, nil when there is none.
	"sub": func(value, key *pongo2.Value) interface{} {
		m, _ := value.Interface().(map[string]interface{})
		return m[key.String()]
	},
	// checked reports whether option is the value, or one of the values, of a choice field.
	"checked": func(value, option *pongo2.Value) bool {
		return fields.HasValue(value.Interface(), option.String())
	},
	// rows returns the rows of a budget, plus a blank one to add an item.
	"rows": func(value *pongo2.Value) []interface{} {
		items, _ := value.Interface().([]interface{})
		out := make([]interface{}, 0, len(items)+1)
		for _, it := range items {
			if m, ok := it.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return append(out, map[string]interface{}{})
	},
	// inputName addresses a nested value with bracket notation: name[key][key].
	"inputName": func(name *pongo2.Value, keys ...*pongo2.Value) string {
		var b strings.Builder
		b.WriteString(name.String())
		for _, k := range keys {
			b.WriteString("[" + k.String() + "]")
		}
		return b.String()
	},
	"errorFor": func(errs, name *pongo2.Value) string {
		list, _ := errs.Interface().([]interface{})
		for _, e := range list {
			if m, ok := e.(map[string]interface{}); ok && m["param"] == name.String() {
				return plain(m["message"])
			}
		}
		return ""
	},
	"dict": func(kv ...*pongo2.Value) (map[string]interface{}, error) {
		if len(kv)%2 != 0 {
			return nil, errors.New("dict: odd number of arguments")
		}
		m := make(map[string]interface{}, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			if !kv[i].IsString() {
				return nil, errors.Errorf("dict: key %v is not a string", kv[i].Interface())
			}
			m[kv[i].String()] = kv[i+1].Interface()
		}
		return m, nil
	},
	// currency formats an amount, or the total of a budget.
	"currency": func(value *pongo2.Value) string {
		v := value.Interface()
		if _, ok := v.([]interface{}); ok {
			items, err := fields.Coerce(fields.TypeBudget, v)
			if err != nil {
				return ""
			}
			budget, _ := items.([]fields.BudgetItem)
			return fields.FormatCurrency(fields.BudgetTotal(budget))
		}
		return fields.FormatCurrency(v)
	},
	// groupedTypes are the field types rendered as a fieldset with a legend.
	"groupedTypes": []string{
		string(fields.TypeRadio), string(fields.TypeCheckbox), string(fields.TypeDate), string(fields.TypeDayMonth),
		string(fields.TypeMonthYear), string(fields.TypeDateRange), string(fields.TypeAddress), string(fields.TypeBudget),
	},
	// stepURL is the address of a step, ref being a form.StepRef.
	"stepURL": func(base, ref *pongo2.Value) string {
		r, _ := ref.Interface().(map[string]interface{})
		return base.String() + "/" + plain(r["section"]) + "/" + plain(r["step"])
	},
}

// plain renders a decoded JSON value for people, nothing for null.
func plain(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return pongo2.AsValue(x).String()
	}
}

// NewRenderer compiles the page templates embedded in the fs package.
// Every page is compiled up front so that a broken template fails at start up.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(appfs.FS, pageTemplatesDir)
	if err != nil {
		return nil, errors.Wrap(err, "opening page templates")
	}
	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		return nil, errors.Wrap(err, "reading page templates")
	}

	set := pongo2.NewSet("pages", pongo2.NewFSLoader(sub))
	if set.Globals == nil {
		set.Globals = make(pongo2.Context)
	}
	set.Globals.Update(pageFuncs)

	r := &Renderer{pages: make(map[string]*pongo2.Template)}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != pageTemplateExt || strings.HasPrefix(name, "_") {
			continue
		}
		tmpl, err := set.FromFile(name)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling %s", name)
		}
		r.pages[strings.TrimSuffix(name, pageTemplateExt)] = tmpl
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("page template %q not found", name)
	}

	pageCtx, err := toContext(data)
	if err != nil {
		return errors.Wrapf(err, "preparing %s", name)
	}
	// render to a buffer first so that a failing template does not send half a page
	var buf bytes.Buffer
	if err = tmpl.ExecuteWriter(pageCtx, &buf); err != nil {
		return errors.Wrapf(err, "rendering %s", name)
	}
	_, err = buf.WriteTo(w)
	return err
}

// toContext hands data to the templates as decoded JSON.
func toContext(data interface{}) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	// numbers stay json.Number: pongo2 prints floats with six decimals
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out map[string]interface{}
	if err = dec.Decode(&out); err != nil {
		return nil, err
	}
	return pongo2.Context(out), nil
}

// Page is the data every page template is executed with.
type Page struct {
	Title   string      `json:"title"`
	Locale  core.Locale `json:"locale"`
	Prefix  string      `json:"prefix"` // "/welsh" on Welsh pages
	Flashes []string    `json:"flashes"`
	Data    interface{} `json:"data"`
}

func newPage(ctx echo.Context, title core.Copy, data interface{}) Page {
	l := contextLocale(ctx)
	p := Page{Title: title.In(l), Locale: l, Data: data}
	if l == core.LocaleCy {
		p.Prefix = welshPrefix
	}
	if sess := contextSession(ctx); sess != nil {
		p.Flashes = sess.PopFlashes()
	}
	return p
}
