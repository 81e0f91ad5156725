package oauth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	webassets "github.com/tyemirov/teamnest/web"
)

// SignInConfig contains the dynamic values injected into the sign-in page.
type SignInConfig struct {
	GoogleClientID string
	State          string
}

// ServeSignInPage writes the embedded sign-in page.
func ServeSignInPage(contextGin *gin.Context) {
	page, readErr := webassets.FS.ReadFile("signin.html")
	if readErr != nil {
		contextGin.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	contextGin.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
	contextGin.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// ServeSignInConfig emits a JavaScript payload that hydrates
// window.__TEAMNEST_SIGNIN_CONFIG and wires the Google client id into the
// sign-in markup.
func ServeSignInConfig(contextGin *gin.Context, configuration SignInConfig) {
	payload := struct {
		GoogleClientID string `json:"googleClientId"`
		State          string `json:"state"`
	}{
		GoogleClientID: configuration.GoogleClientID,
		State:          configuration.State,
	}
	encoded, encodeErr := json.Marshal(payload)
	if encodeErr != nil {
		contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "oauth.signin_config.encode_failed",
		})
		return
	}

	script := fmt.Sprintf(`(function(){var config=Object.freeze(%s);window.__TEAMNEST_SIGNIN_CONFIG=config;if(typeof window==="undefined"||typeof document==="undefined"){return;}var assignGoogleConfig=function(){var host=document.getElementById("g_id_onload");if(host&&config.googleClientId){host.setAttribute("data-client_id",config.googleClientId);}};if(document.readyState==="loading"){document.addEventListener("DOMContentLoaded",assignGoogleConfig,{once:true});}else{assignGoogleConfig();}})();`, string(encoded))

	contextGin.Header("Content-Type", "application/javascript; charset=utf-8")
	contextGin.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
	contextGin.Header("Pragma", "no-cache")
	contextGin.Header("X-Content-Type-Options", "nosniff")
	contextGin.String(http.StatusOK, script)
}

func serveResultPage(contextGin *gin.Context, statusCode int, title string, message string) {
	pageTemplate := successPageTemplate
	if statusCode >= 300 {
		pageTemplate = errorPageTemplate
	}
	page := fmt.Sprintf(pageTemplate, title, title, message)
	contextGin.Data(statusCode, "text/html; charset=utf-8", []byte(page))
}

const successPageTemplate = `<!DOCTYPE html>
<html>
  <head>
    <title>%s</title>
  </head>
  <body>
    <h1>%s</h1>
    <p>%s</p>
    <script>
      setTimeout(window.close, 0)
    </script>
  </body>
</html>
`

const errorPageTemplate = `<!DOCTYPE html>
<html>
  <head>
    <title>%s</title>
  </head>
  <body>
    <h1>%s</h1>
    <p>%s</p>
    <p>You may now close this window.</p>
  </body>
</html>
`
