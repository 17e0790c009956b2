// Package generation defines the boundary between the application core and
// the external AI service that writes stories. The StoryGenerator interface
// keeps the core independent of any concrete LLM backend; the prompt builder
// turns a character, its memories and the attached learning goals into a
// child-appropriate instruction.
package generation
