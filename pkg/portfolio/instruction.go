package portfolio

import (
	"fmt"
	"strings"
)

// Variant selects which tool names the instruction refers to.
type Variant string

const (
	// VariantClient is the multi-turn loop run next to the page.
	VariantClient Variant = "client"
	// VariantServer is the single round trip answered by the HTTP backend.
	VariantServer Variant = "server"
)

// Instruction renders the system instruction for the given variant. The
// output depends only on d and variant.
func (d *Data) Instruction(variant Variant) string {
	var b strings.Builder

	if variant == VariantServer {
		d.writeServerRules(&b)
	} else {
		d.writeClientRules(&b)
	}

	b.WriteString("\nPAGE SECTIONS (use these IDs with ")
	b.WriteString(scrollTool(variant))
	b.WriteString("):\n")
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "- %q: %s\n", s.ID, s.Description)
	}

	d.writeContext(&b)
	return b.String()
}

func scrollTool(variant Variant) string {
	if variant == VariantServer {
		return "scrollToSection"
	}
	return "scroll_to_section"
}

func (d *Data) writeClientRules(b *strings.Builder) {
	b.WriteString("You are an intelligent Co-Browsing Assistant. Your goal is to navigate, explain, and interact with this website for the user.\n\n")
	b.WriteString("CRITICAL RULE: Do not just tell the user where things are. If they ask to \"see\", \"go to\", or \"show\" something, use the scroll_to_section or scroll_window tool immediately.\n")
	b.WriteString("If they ask about content, use read_page_content.\n")
	b.WriteString("If they ask to click something, use click_element.\n")
	b.WriteString("If they want to open a project's demo or code, use open_project_link.\n")
	b.WriteString("If they give their name, email, or a message for the contact form, use fill_form.\n")
	b.WriteString("Be concise and helpful.\n")
}

func (d *Data) writeServerRules(b *strings.Builder) {
	name := d.Profile.Name
	fmt.Fprintf(b, "You are an AI co-browsing assistant embedded in %s's portfolio website.\n", name)
	fmt.Fprintf(b, "Your role is to answer questions about %s AND to actively control the UI using your tools.\n\n", name)
	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("- When a user asks to \"see\", \"show\", \"take me to\", or \"go to\" something, you MUST call scrollToSection.\n")
	for _, s := range d.Sections {
		if hint := sectionHint(s.ID, name); hint != "" {
			fmt.Fprintf(b, "- %s → call scrollToSection({ sectionId: %q })\n", hint, s.ID)
		}
	}
	b.WriteString("- When a user asks to highlight or point out something → call highlightElement with the appropriate CSS selector\n")
	b.WriteString("- You can call multiple tools AND provide text in the same response.\n")
	b.WriteString("- Keep text answers concise (under 100 words).\n")
	b.WriteString("- Be professional, friendly, and enthusiastic.\n")
}

func sectionHint(id, name string) string {
	switch id {
	case "desktop":
		return "When a user asks about projects"
	case "contact":
		return "When a user asks for contact info"
	case "about":
		return fmt.Sprintf("When a user asks about %s or who they are", name)
	}
	return ""
}

func (d *Data) writeContext(b *strings.Builder) {
	p := d.Profile
	b.WriteString("\nPORTFOLIO CONTEXT:\n")
	fmt.Fprintf(b, "Name: %s\n", p.Name)
	fmt.Fprintf(b, "Role: %s\n", p.Role)
	fmt.Fprintf(b, "Location: %s\n", p.Location)
	fmt.Fprintf(b, "Email: %s\n", p.Email)
	fmt.Fprintf(b, "Phone: %s\n", p.Phone)
	fmt.Fprintf(b, "LinkedIn: %s\n", p.LinkedIn)
	fmt.Fprintf(b, "GitHub: %s\n", p.GitHub)
	fmt.Fprintf(b, "\nAbout: %s\n", p.About)

	b.WriteString("\nSKILLS:\n")
	for _, s := range d.Skills {
		fmt.Fprintf(b, "- %s (%s)\n", s.Name, s.Category)
	}

	b.WriteString("\nPROJECTS:\n")
	for i, pr := range d.Projects {
		fmt.Fprintf(b, "%d. %s: %s (Stack: %s)\n", i+1, pr.Title, pr.Description, strings.Join(pr.Tags, ", "))
	}

	b.WriteString("\nEXPERIENCE:\n")
	for i, e := range d.Experience {
		fmt.Fprintf(b, "%d. %s at %s (%s): %s\n", i+1, e.Role, e.Company, e.Period, strings.Join(e.Description, " "))
	}
}
