package cart

import (
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"
)

const CookieName = "cafe_cart"

var (
	formEncoder = formcodec.NewEncoder()
	formDecoder = formcodec.NewDecoder()
)

type cookieContent struct {
	Items []Line `form:"items"`
}

// Encode renders the cart as a form-encoded string of product ids and quantities.
func Encode(cart Cart) (string, error) {
	values, err := formEncoder.Encode(cookieContent{Items: cart.Lines()})
	if err != nil {
		return "", err
	}
	return values.Encode(), nil
}

func Decode(encoded string) (Cart, error) {
	values, err := url.ParseQuery(encoded)
	if err != nil {
		return Cart{}, err
	}

	content := cookieContent{}
	err = formDecoder.Decode(&content, values)
	if err != nil {
		return Cart{}, err
	}

	return New(content.Items...), nil
}

// Load returns the cart of the cookie. A missing or unreadable cookie is an empty cart.
func Load(r *http.Request) Cart {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return New()
	}

	cart, err := Decode(cookie.Value)
	if err != nil {
		return New()
	}
	return cart
}

func Save(w http.ResponseWriter, r *http.Request, cart Cart) error {
	if cart.IsEmpty() {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return nil
	}

	encoded, err := Encode(cart)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
