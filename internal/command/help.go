package command

import (
	"context"
	"strings"

	"github.com/notepid/dusk_bbs/internal/prefs"
	"github.com/notepid/dusk_bbs/internal/terminal"
)

const helpText = `Available commands:
  REGISTER <username> <password>    Create an account
  LOGIN <username> <password>       Log in
  LOGOUT                            Log out
  WHO                               List logged-in users
  LOOK                              Show recent messages on the current board
  SAY <text>                        Post a message on the current board
  LISTBOARDS                        List boards
  JOINBOARD <id|name>               Switch to another board
  SENDMAIL <user> <subject>///<body>  Send private mail
  LISTMAIL                          List your mail
  READMAIL <id>                     Read a mail message
  DELETEMAIL <id>                   Delete a mail message
  LISTFILEAREAS                     List file areas
  LISTFILES [area]                  List files in an area
  FILEDESC <id>///<description>     Change a file description
  DOWNLOADINFO <id>                 Download a file
  GAME LIST | GAME <name> START     Play a game (QUIT or EXIT leaves)
  SETCOLOR <element> <color>        Change a display color (HELP SETCOLOR)
  HELP [SETCOLOR]                   Show this help`

const sysopHelpText = `
Sysop commands:
  KICK <username>                   Disconnect a user
  BROADCAST <text>                  Send a message to every session
  EDITMESSAGE <id> <text>           Replace a post's text
  DELETEMESSAGE <id>                Delete a post
  UPLOADINFO <area> <file>///[desc] Add a file listing`

func (d *Dispatcher) cmdHelp(ctx context.Context, c *call) string {
	if len(c.args) > 0 && strings.EqualFold(c.args[0], "SETCOLOR") {
		return setColorHelp(c)
	}
	if c.sess.IsSysop() {
		return helpText + "\n" + sysopHelpText
	}
	return helpText
}

func setColorHelp(c *call) string {
	var b strings.Builder
	b.WriteString("Usage: SETCOLOR <element> <color>\nElements:")
	for _, e := range prefs.Elements {
		b.WriteString("\n  " + e + " (currently " + c.sess.Color(e) + ")")
	}
	b.WriteString("\nColors:")
	for _, col := range prefs.Palette {
		name := col
		if c.sess.Kind.Colored() {
			name = terminal.Paint(col, col)
		}
		b.WriteString("\n  " + name)
	}
	return b.String()
}
