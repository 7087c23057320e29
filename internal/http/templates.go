package httpserver

import "html/template"

var postPageTemplate = template.Must(template.New("post").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{.Styles}}</head>
<body>
<article id="post-{{.ID}}">
<h1>{{.Title}}</h1>
{{.Rating}}
</article>
</body>
</html>
`))

type postPageView struct {
	ID     int64
	Title  string
	Styles template.HTML
	Rating template.HTML
}

var adminPageTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body class="admin">
{{if .Notice}}<div class="updated"><p>{{.Notice}}</p></div>
{{end}}{{.Body}}</body>
</html>
`))

type adminPageView struct {
	Title  string
	Notice string
	Body   template.HTML
}

var editPostTemplate = template.Must(template.New("edit").Parse(`<div class="wrap">
<h2>{{.Heading}}</h2>
<form action="/admin/posts/{{.ID}}" method="post">
<input type="text" name="post_title" value="{{.Title}}">
{{range .Boxes}}<div id="{{.ID}}" class="postbox {{.Context}}">
<h3>{{.Title}}</h3>
<div class="inside">{{.Body}}</div>
</div>
{{end}}<input name="save" type="submit" value="{{.Submit}}">
</form>
</div>
`))

type editPostView struct {
	ID      int64
	Heading string
	Title   string
	Boxes   []metaBoxView
	Submit  string
}

type metaBoxView struct {
	ID      string
	Context string
	Title   string
	Body    template.HTML
}
