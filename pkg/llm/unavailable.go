package llm

import "context"

// Unavailable returns a provider whose every call fails with err. It lets a
// surface start without credentials and report the problem per message.
func Unavailable(name string, err error) Provider {
	return &unavailable{name: name, err: err}
}

type unavailable struct {
	name string
	err  error
}

func (u *unavailable) Generate(context.Context, *Request) (*Response, error) {
	return nil, u.err
}

func (u *unavailable) Name() string { return u.name }

func (u *unavailable) Model() string { return "" }
