package patch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/strapi-github/internal/errs"
	"github.com/donaldgifford/strapi-github/internal/patch"
)

const generatedIndex = `
import type { Core } from '@strapi/strapi';

export default {
  register({ strapi }: { strapi: Core.Strapi }) {},
  bootstrap(/* { strapi }: { strapi: Core.Strapi } */) {},
};
`

func writeIndex(t *testing.T, content string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(dir, 0o750))

	path := filepath.Join(dir, "index.ts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(content)
}

func TestApply_GeneratedPlaceholder(t *testing.T) {
	t.Parallel()

	out, err := patch.TextAnchor{}.Apply(generatedIndex)
	require.NoError(t, err)

	expected := `
import type { Core } from '@strapi/strapi';
import { setUpGithubWebhook } from "./util/set-up-github-webhook";

export default {
  register({ strapi }: { strapi: Core.Strapi }) {},
  async bootstrap({ strapi }: { strapi: Core.Strapi }) {
    await setUpGithubWebhook(strapi);
  },
};
`
	assert.Equal(t, expected, out)
}

func TestApply_NoImportsAddsCoreType(t *testing.T) {
	t.Parallel()

	src := "export default {\n  bootstrap() {},\n};\n"

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	expected := patch.CoreImportLine + "\n" +
		patch.ImportLine + "\n" +
		"export default {\n" +
		"  async bootstrap({ strapi }: { strapi: Core.Strapi }) {\n" +
		"    await setUpGithubWebhook(strapi);\n" +
		"  },\n" +
		"};\n"
	assert.Equal(t, expected, out)
}

func TestApply_KeepsExistingBody(t *testing.T) {
	t.Parallel()

	src := `import type { Core } from '@strapi/strapi';

export default {
  bootstrap({ strapi }: { strapi: Core.Strapi }) {
    strapi.log.info("ready");
  },
};
`

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	assert.Contains(t, out, `  async bootstrap({ strapi }: { strapi: Core.Strapi }) {
    await setUpGithubWebhook(strapi);
    strapi.log.info("ready");
  },`)
}

func TestApply_AlreadyAsync(t *testing.T) {
	t.Parallel()

	src := `import type { Core } from '@strapi/strapi';

export default {
  async bootstrap({ strapi }: { strapi: Core.Strapi }) {
    await seed(strapi);
  },
};
`

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "async bootstrap"))
	assert.NotContains(t, out, "async async")
	assert.Contains(t, out, "    await setUpGithubWebhook(strapi);\n    await seed(strapi);\n")
}

func TestApply_InlineStatements(t *testing.T) {
	t.Parallel()

	src := "import type { Core } from '@strapi/strapi';\nexport default {\n  bootstrap() { console.log(1); },\n};\n"

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	assert.Contains(t, out, "  async bootstrap({ strapi }: { strapi: Core.Strapi }) {\n    await setUpGithubWebhook(strapi);\n    console.log(1); },\n")
}

func TestApply_MultiLineImport(t *testing.T) {
	t.Parallel()

	src := `import type { Core } from "@strapi/strapi";
import {
  seed,
  migrate,
} from "./util/db";

export default {
  bootstrap() {},
};
`

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	assert.Contains(t, out, "} from \"./util/db\";\n"+patch.ImportLine+"\n\nexport default {")
	assert.NotContains(t, out, patch.CoreImportLine+"\n"+patch.ImportLine)
}

func TestApply_CRLF(t *testing.T) {
	t.Parallel()

	src := "import type { Core } from '@strapi/strapi';\r\n\r\nexport default {\r\n  bootstrap() {},\r\n};\r\n"

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	expected := "import type { Core } from '@strapi/strapi';\r\n" +
		patch.ImportLine + "\r\n" +
		"\r\n" +
		"export default {\r\n" +
		"  async bootstrap({ strapi }: { strapi: Core.Strapi }) {\r\n" +
		"    await setUpGithubWebhook(strapi);\r\n" +
		"  },\r\n" +
		"};\r\n"
	assert.Equal(t, expected, out)
}

func TestApply_FirstDeclarationWins(t *testing.T) {
	t.Parallel()

	src := "import type { Core } from '@strapi/strapi';\nexport default {\n  bootstrap() {},\n};\nexport const other = {\n  bootstrap() {},\n};\n"

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, patch.Signature))
	assert.Equal(t, 1, strings.Count(out, patch.SetupCall))
	assert.True(t, strings.HasSuffix(out, "export const other = {\n  bootstrap() {},\n};\n"))
}

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected patch.Decision
	}{
		{name: "generated", src: generatedIndex, expected: patch.NeedsBootstrapRewrite},
		{name: "already patched", src: patch.ImportLine + "\n", expected: patch.AlreadyPatched},
		{
			name:     "call without import",
			src:      "export default {\n  async bootstrap({ strapi }) {\n    await setUpGithubWebhook(strapi);\n  },\n};\n",
			expected: patch.NeedsImportInsertion,
		},
		{
			name:     "call without await",
			src:      "export default {\n  bootstrap({ strapi }) {\n    setUpGithubWebhook(strapi);\n  },\n};\n",
			expected: patch.NeedsImportInsertion,
		},
		{
			name:     "line-commented call",
			src:      "export default {\n  bootstrap() {\n    // TODO setUpGithubWebhook(strapi);\n  },\n};\n",
			expected: patch.NeedsBootstrapRewrite,
		},
		{
			name:     "block-commented call",
			src:      "export default {\n  bootstrap() {\n    /*\n    await setUpGithubWebhook(strapi);\n    */\n  },\n};\n",
			expected: patch.NeedsBootstrapRewrite,
		},
		{
			name:     "commented-out import",
			src:      "// " + patch.ImportLine + "\nexport default {\n  bootstrap() {},\n};\n",
			expected: patch.NeedsBootstrapRewrite,
		},
		{
			name:     "import inside block comment",
			src:      "/*\n" + patch.ImportLine + "\n*/\nexport default {\n  bootstrap() {},\n};\n",
			expected: patch.NeedsBootstrapRewrite,
		},
		{name: "arrow property", src: "export default {\n  bootstrap: async () => {},\n};\n", expected: patch.UnrecognizedShape},
		{name: "commented out", src: "export default {\n  // bootstrap() {},\n};\n", expected: patch.UnrecognizedShape},
		{name: "empty file", src: "", expected: patch.UnrecognizedShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, patch.TextAnchor{}.Decide(tt.src))
		})
	}
}

func TestApply_CallWithoutImportOnlyAddsImport(t *testing.T) {
	t.Parallel()

	src := "import type { Core } from '@strapi/strapi';\n\nexport default {\n  async bootstrap({ strapi }: { strapi: Core.Strapi }) {\n    await setUpGithubWebhook(strapi);\n  },\n};\n"

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, patch.SetupCall))
	assert.Equal(t, 1, strings.Count(out, patch.ImportLine))
	assert.Equal(t, strings.Replace(src, "';\n", "';\n"+patch.ImportLine+"\n", 1), out)
}

func TestPatchFile_CommentedCallIsRewritten(t *testing.T) {
	t.Parallel()

	path := writeIndex(t, "import type { Core } from '@strapi/strapi';\n\nexport default {\n  bootstrap() {\n    // TODO setUpGithubWebhook(strapi);\n  },\n};\n")

	decision, err := patch.PatchFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, patch.NeedsBootstrapRewrite, decision)

	out := readFile(t, path)
	assert.Contains(t, out, "  async bootstrap({ strapi }: { strapi: Core.Strapi }) {\n    await setUpGithubWebhook(strapi);\n    // TODO setUpGithubWebhook(strapi);\n  },\n")

	decision, err = patch.PatchFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, patch.AlreadyPatched, decision)
	assert.Equal(t, out, readFile(t, path))
}

func TestApply_ByteOrderMark(t *testing.T) {
	t.Parallel()

	src := "\ufeffimport type { Core } from '@strapi/strapi';\n\nexport default {\n  bootstrap() {},\n};\n"

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "\ufeffimport type { Core } from '@strapi/strapi';\n"+patch.ImportLine+"\n"))
	assert.Equal(t, 1, strings.Count(out, "\ufeff"))
	assert.Equal(t, 1, strings.Count(out, "import type { Core }"))
	assert.Equal(t, patch.AlreadyPatched, patch.TextAnchor{}.Decide(out))
}

func TestApply_SkipsImportsInBlockComments(t *testing.T) {
	t.Parallel()

	src := "import type { Core } from '@strapi/strapi';\n/*\nimport { old } from \"./old\";\n*/\n/* import { legacy } from \"./legacy\"; */\nexport default {\n  bootstrap() {},\n};\n"

	out, err := patch.TextAnchor{}.Apply(src)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "import type { Core } from '@strapi/strapi';\n"+patch.ImportLine+"\n/*\n"))
	assert.Equal(t, 1, strings.Count(out, patch.ImportLine))
}

func TestPatchFile_SyncEmptyHook(t *testing.T) {
	t.Parallel()

	path := writeIndex(t, generatedIndex)

	decision, err := patch.PatchFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, patch.NeedsBootstrapRewrite, decision)

	out := readFile(t, path)
	assert.Equal(t, 1, strings.Count(out, patch.ImportLine))
	assert.Contains(t, out, patch.Signature)

	// The setup call is the first statement of the hook body.
	_, body, found := strings.Cut(out, patch.Signature)
	require.True(t, found)
	assert.True(t, strings.HasPrefix(strings.TrimLeft(body, " \n"), patch.SetupCall))
}

func TestPatchFile_Idempotent(t *testing.T) {
	t.Parallel()

	path := writeIndex(t, generatedIndex)

	_, err := patch.PatchFile(path, patch.TextAnchor{})
	require.NoError(t, err)

	once := readFile(t, path)

	decision, err := patch.PatchFile(path, patch.TextAnchor{})
	require.NoError(t, err)
	assert.Equal(t, patch.AlreadyPatched, decision)

	assert.Equal(t, once, readFile(t, path))
}

func TestPatchFile_UnrecognizedLeavesFileUnchanged(t *testing.T) {
	t.Parallel()

	original := "export default {\n  bootstrap: async () => {},\n};\n"
	path := writeIndex(t, original)

	decision, err := patch.PatchFile(path, nil)
	assert.Equal(t, patch.UnrecognizedShape, decision)

	var patchErr *errs.PatchError

	require.ErrorAs(t, err, &patchErr)
	assert.Equal(t, path, patchErr.Path)
	assert.Equal(t, patch.Pattern, patchErr.Pattern)

	assert.Equal(t, original, readFile(t, path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestPatchFile_KeepsMode(t *testing.T) {
	t.Parallel()

	path := writeIndex(t, generatedIndex)
	require.NoError(t, os.Chmod(path, 0o600))

	_, err := patch.PatchFile(path, nil)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPatchFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := patch.PatchFile(filepath.Join(t.TempDir(), "index.ts"), nil)

	var ioErr *errs.IOError

	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "stat", ioErr.Op)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	path := writeIndex(t, generatedIndex)

	decision, err := patch.Inspect(path, nil)
	require.NoError(t, err)
	assert.Equal(t, patch.NeedsBootstrapRewrite, decision)
	assert.Equal(t, generatedIndex, readFile(t, path))
}

func TestDecision_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "already-patched", patch.AlreadyPatched.String())
	assert.Equal(t, "needs-import-insertion", patch.NeedsImportInsertion.String())
	assert.Equal(t, "needs-bootstrap-rewrite", patch.NeedsBootstrapRewrite.String())
	assert.Equal(t, "unrecognized-shape", patch.UnrecognizedShape.String())
	assert.Equal(t, "unknown", patch.Decision(42).String())

	text, err := patch.AlreadyPatched.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "already-patched", string(text))
}
