// Package scaffold materializes a project's components from a template
// library. Generation runs in two phases: Plan resolves components and
// renders every template in memory, and Apply writes the rendered tree under
// target_dir/components/<component>/. A failing Plan leaves the filesystem
// untouched.
package scaffold
