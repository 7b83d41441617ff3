package config

import (
	"strconv"

	"github.com/xlab/treeprint"
)

// Tree renders the resolution for display. The password is never shown.
func (r *Resolution) Tree() string {
	tree := treeprint.NewWithRoot("connection")

	source := tree.AddMetaBranch("source", r.Source.String())
	if r.Source == SourceFile {
		source.AddMetaNode("path", r.Path)
		source.AddMetaNode("environment", r.Environment)
	} else {
		source.AddMetaNode("url", r.Config.Masked())
	}

	c := r.Config
	host := c.Host
	if host == "" {
		host = "(default)"
	}
	port := "(default)"
	if c.Port != 0 {
		port = strconv.Itoa(c.Port)
	}
	password := "(none)"
	if c.Password != "" {
		password = "***"
	}

	tree.AddMetaNode("host", host)
	tree.AddMetaNode("port", port)
	tree.AddMetaNode("user", c.User)
	tree.AddMetaNode("database", c.Database)
	tree.AddMetaNode("password", password)

	return tree.String()
}
