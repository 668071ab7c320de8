package main

import (
	"context"

	"github.com/99minutos/client-console/internal/core/ports"
	"github.com/99minutos/client-console/internal/core/service"
)

type ListCmd struct {
	Query string `short:"q" long:"query" description:"JMESPath expression applied to the client list"`
	JSON  bool   `long:"json" description:"print JSON instead of a table"`

	root *Options
}

func (c *ListCmd) Execute(_ []string) error {
	ctx := context.Background()
	s, err := c.root.open(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	res, err := s.console.Render(ctx, ports.NoneSelected)
	if err != nil {
		printNotice(c.root.env.errOut, res.Notice)
		return err
	}

	out := c.root.env.out
	switch {
	case c.Query != "":
		return printQuery(out, res.View.Clients, c.Query)
	case c.JSON:
		return printJSON(out, res.View.Clients)
	}
	printClients(out, res.View)
	return nil
}

type ShowCmd struct {
	Args struct {
		Username string `positional-arg-name:"username"`
	} `positional-args:"yes" required:"yes"`
	JSON bool `long:"json" description:"print JSON"`

	root *Options
}

func (c *ShowCmd) Execute(_ []string) error {
	ctx := context.Background()
	s, err := c.root.open(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	summary, err := s.console.GetClient(ctx, c.Args.Username)
	if err != nil {
		printNotice(c.root.env.errOut, service.ErrorNotice(err))
		return err
	}
	if c.JSON {
		return printJSON(c.root.env.out, summary)
	}
	printClient(c.root.env.out, *summary)
	return nil
}

// clientFlags are the fields shared by add and update.
type clientFlags struct {
	Password    string   `short:"p" long:"password" description:"password; prompted for on a terminal when omitted"`
	Expiry      string   `short:"e" long:"expiry" description:"expiry date, YYYY-MM-DD"`
	Permissions []string `short:"P" long:"permission" description:"dashboard to grant, repeatable"`
	Email       string   `long:"email" description:"contact e-mail"`
	ResetLogin  bool     `long:"reset-login" description:"require a login reset on next sign-in"`
}

type AddCmd struct {
	Username string `short:"u" long:"username" description:"client username" required:"yes"`
	clientFlags

	root *Options
}

func (c *AddCmd) Execute(_ []string) error {
	ctx := context.Background()
	password, err := c.root.env.promptPassword(c.Password, "password: ")
	if err != nil {
		return err
	}

	s, err := c.root.open(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	res, err := s.console.AddClient(ctx, ports.AddClientInput{
		Username:    c.Username,
		Password:    password,
		ExpiryDate:  c.Expiry,
		Permissions: c.Permissions,
		Email:       c.Email,
		LoginStatus: c.ResetLogin,
	})
	return c.root.report(res, err)
}

// UpdateCmd replaces the client's fields. Flags that are not given keep the
// stored value, as the prefilled edit form does.
type UpdateCmd struct {
	Args struct {
		Username string `positional-arg-name:"username"`
	} `positional-args:"yes" required:"yes"`
	clientFlags
	ClearPermissions bool `long:"clear-permissions" description:"revoke every dashboard"`
	ClearResetLogin  bool `long:"clear-reset-login" description:"drop a pending login reset"`

	root *Options
}

func (c *UpdateCmd) Execute(_ []string) error {
	ctx := context.Background()
	s, err := c.root.open(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	current, err := s.console.GetClient(ctx, c.Args.Username)
	if err != nil {
		res, _ := s.console.Render(ctx, ports.NoneSelected)
		res.Notice = service.ErrorNotice(err)
		return c.root.report(res, err)
	}

	password, err := c.root.env.promptPassword(c.Password, "new password (empty keeps the current one): ")
	if err != nil {
		return err
	}

	in := ports.UpdateClientInput{
		Username:    current.Username,
		Password:    password,
		ExpiryDate:  current.ExpiryDate,
		Permissions: current.Permissions,
		Email:       current.Email,
		LoginStatus: current.LoginStatus,
	}
	if c.Expiry != "" {
		in.ExpiryDate = c.Expiry
	}
	if len(c.Permissions) > 0 || c.ClearPermissions {
		in.Permissions = c.Permissions
	}
	if c.Email != "" {
		in.Email = c.Email
	}
	switch {
	case c.ResetLogin:
		in.LoginStatus = true
	case c.ClearResetLogin:
		in.LoginStatus = false
	}

	res, err := s.console.UpdateClient(ctx, in)
	return c.root.report(res, err)
}

type DeleteCmd struct {
	Args struct {
		Username string `positional-arg-name:"username"`
	} `positional-args:"yes" required:"yes"`

	root *Options
}

func (c *DeleteCmd) Execute(_ []string) error {
	ctx := context.Background()
	s, err := c.root.open(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	res, err := s.console.DeleteClient(ctx, c.Args.Username)
	return c.root.report(res, err)
}

// report prints the notice and the refreshed client list of a console result.
func (o *Options) report(res *ports.ConsoleResult, err error) error {
	if res == nil {
		return err
	}
	w := o.env.out
	if err != nil {
		w = o.env.errOut
	}
	printNotice(w, res.Notice)
	if err == nil {
		printClients(o.env.out, res.View)
	}
	return err
}
