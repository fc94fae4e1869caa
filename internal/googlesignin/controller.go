package googlesignin

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/idtoken"

	"account_service/internal/apperror"
)

//go:embed templates/*.html
var templatesFS embed.FS

// tokenValidator verifies a Google ID token against an audience. It is a
// function field so tests can substitute the network call.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type Controller struct {
	appHost  string
	clientID string
	validate tokenValidator
}

func NewController(appHost, clientID string) *Controller {
	return &Controller{
		appHost:  appHost,
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// SetupRoutes registers the sign-in endpoints and installs the HTML
// templates this package renders.
func (g *Controller) SetupRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	r.GET("/google-signin", g.SigninView)
	r.POST("/google-signin", g.Signin)
}

// SigninView handles GET /google-signin.
func (g *Controller) SigninView(c *gin.Context) {
	c.HTML(http.StatusOK, "google-signin.html", gin.H{
		"GoogleClientID": g.clientID,
		"AppHost":        g.appHost,
	})
}

// Signin handles POST /google-signin. The CSRF token arrives twice, as a
// cookie and as a form field (double submit); both must be present and
// equal before the ID token is verified.
func (g *Controller) Signin(c *gin.Context) {
	csrfCookie, err := c.Cookie("csrf_cookie")
	if err != nil || csrfCookie == "" {
		abortWith(c, apperror.NewWithMessage(apperror.InvalidInput, "No CSRF token in Cookie."))
		return
	}
	csrfToken := c.PostForm("csrf_token")
	if csrfToken == "" {
		abortWith(c, apperror.NewWithMessage(apperror.InvalidInput, "No CSRF token in body."))
		return
	}
	if csrfCookie != csrfToken {
		abortWith(c, apperror.NewWithMessage(apperror.InvalidInput, "Failed to verify double submit cookie."))
		return
	}

	credential := c.PostForm("credential")
	if _, err := g.validate(c.Request.Context(), credential, g.clientID); err != nil {
		abortWith(c, apperror.NewWithMessage(apperror.AuthenticationFail, "Failed to verify ID token."))
		return
	}

	logrus.Info("Sign in succeeded")
	c.Status(http.StatusOK)
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
