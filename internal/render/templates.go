package render

import (
	"regexp"

	"github.com/flosch/pongo2/v4"
)

func init() {
	// output is source code, not HTML
	pongo2.SetAutoescape(false)
}

// blockLine matches a line holding nothing but one template tag.
var blockLine = regexp.MustCompile(`(?m)^[ \t]*(\{%[^%]*%\})[ \t]*\n`)

// compile parses a template after removing the line breaks and indentation
// around tag-only lines, so that control flow does not leave blank lines in
// the output.
func compile(src string) *pongo2.Template {
	return pongo2.Must(pongo2.FromString(blockLine.ReplaceAllString(src, "$1")))
}

var externsPxdTemplate = compile(`# cython: language_level=3
# distutils: language = c++

{% for imp in f.Libraries %}
from {{ imp.Module }} cimport {{ imp.Symbol }}
{% endfor %}
{% for imp in f.Imports %}
from {{ imp.ExternsModule }} cimport {{ imp.Symbol }}
{% endfor %}
from cytobuf.protobuf.common cimport Message

cdef extern from "{{ f.CppHeader }}" namespace "{{ f.Namespace }}":
{% if f.Empty %}
    pass
{% endif %}
{% for e in f.Enums %}

    cdef enum {{ e.Name }} "{{ e.Native }}":
{% for v in e.Values %}
        {{ e.Name }}_{{ v.Name }} "{{ v.NativeName }}"
{% endfor %}
{% endfor %}
{% for c in f.Classes %}

    cdef cppclass {{ c.Name }} "{{ c.Native }}"(Message):
        {{ c.Name }}()
{% for fld in c.Fields %}
        void clear_{{ fld.Native }}()
        {{ fld.ConstRef }} {{ fld.Native }}({% if fld.Repeated %}int) except +{% else %}){% endif %}
{% if fld.IsMessage %}
        {{ fld.CppType }}* mutable_{{ fld.Native }}({% if fld.Repeated %}int) except +{% else %}){% endif %}
{% elif fld.IsMap %}
        {{ fld.CppType }}* mutable_{{ fld.Native }}()
{% endif %}
{% if fld.Settable %}
        void set_{{ fld.Native }}({% if fld.Repeated %}int, {% endif %}{{ fld.ConstRef }}) except +
{% endif %}
{% if fld.Repeated %}
        size_t {{ fld.Native }}_size() const
{% if fld.IsMessage %}
        {{ fld.CppType }}* add_{{ fld.Native }}()
{% endif %}
{% if fld.Settable %}
        void add_{{ fld.Native }}({{ fld.ConstRef }}) except +
{% endif %}
{% elif fld.IsMessage %}
        bint has_{{ fld.Native }}() const
{% endif %}
{% endfor %}
{% endfor %}
`)

var pxdTemplate = compile(`# cython: language_level=3
# distutils: language = c++

from cytobuf.protobuf.message cimport Message
{% for c in f.Classes %}
from {{ f.ExternsModule }} cimport {{ c.Name }} as Cpp{{ c.Name }}
{% endfor %}
{% for e in f.Enums %}

cpdef enum {{ e.Name }}:
{% for v in e.Values %}
    {{ v.Name }} = {{ v.Number }}
{% endfor %}
{% endfor %}
{% for c in f.Classes %}
{% for fld in c.Containers %}

cdef class __{{ c.Name }}__{{ fld.Name }}__container:
    cdef Cpp{{ c.Name }}* _instance
{% endfor %}

cdef class {{ c.Name }}(Message):
{% for fld in c.Containers %}
    cdef readonly __{{ c.Name }}__{{ fld.Name }}__container {{ fld.Name }}
{% endfor %}
    cdef Cpp{{ c.Name }}* _message(self)

    @staticmethod
    cdef from_cpp(Cpp{{ c.Name }}* other)
{% endfor %}
`)

var pyxTemplate = compile(`# cython: language_level=3
# distutils: language = c++
# distutils: libraries = protobuf
# distutils: include_dirs = /usr/local/include .
# distutils: library_dirs = /usr/local/lib
# distutils: extra_compile_args= -std=c++11
# distutils: sources = {{ f.CppSource }}

from cytobuf.protobuf.message cimport Message
{% for imp in f.Libraries %}
from {{ imp.Module }} cimport {{ imp.Symbol }}
{% endfor %}
{% for imp in f.Imports %}
from {{ imp.NativeModule }} cimport {{ imp.Symbol }}
{% endfor %}
{% for c in f.Classes %}
from {{ f.ExternsModule }} cimport {{ c.Name }} as Cpp{{ c.Name }}
{% endfor %}
{% for c in f.Classes %}
{% for fld in c.Containers %}
{% if fld.IsMap %}

cdef class __{{ c.Name }}__{{ fld.Name }}__container:

    def __iter__(self):
        cdef {{ fld.CythonType }} map_instance = self._instance.{{ fld.Native }}()
        cdef {{ fld.CythonType }}.iterator it = map_instance.begin()
        while it != map_instance.end():
            yield dereference(it).first{{ fld.Key.Decode }}
            postincrement(it)

    def items(self):
        cdef {{ fld.CythonType }} map_instance = self._instance.{{ fld.Native }}()
        cdef {{ fld.CythonType }}.iterator it = map_instance.begin()
        while it != map_instance.end():
{% if fld.Value.IsMessage %}
            yield dereference(it).first{{ fld.Key.Decode }}, {{ fld.Value.PythonType }}.from_cpp(&(dereference(it).second))
{% else %}
            yield dereference(it).first{{ fld.Key.Decode }}, dereference(it).second{{ fld.Value.Decode }}
{% endif %}
            postincrement(it)

    def __len__(self):
        return self._instance.{{ fld.Native }}().size()

    def __contains__(self, {{ fld.Key.CythonType }} key):
        cdef {{ fld.CythonType }} map_instance = self._instance.{{ fld.Native }}()
        cdef {{ fld.Key.CppType }} key_value = key{{ fld.Key.Encode }}
        return map_instance.contains(key_value)

    def __getitem__(self, {{ fld.Key.CythonType }} key):
        cdef {{ fld.Key.CppType }} key_value = key{{ fld.Key.Encode }}
{% if fld.Value.IsMessage %}
        cdef {{ fld.CythonType }}* map_instance = self._instance.mutable_{{ fld.Native }}()
        return {{ fld.Value.PythonType }}.from_cpp(&dereference(map_instance)[key_value])
{% else %}
        cdef {{ fld.CythonType }} map_instance = self._instance.{{ fld.Native }}()
        if not map_instance.contains(key_value):
            raise KeyError(key)
        return map_instance[key_value]{{ fld.Value.Decode }}
{% endif %}

    def __delitem__(self, {{ fld.Key.CythonType }} key):
        cdef {{ fld.CythonType }}* map_instance = self._instance.mutable_{{ fld.Native }}()
        cdef {{ fld.Key.CppType }} key_value = key{{ fld.Key.Encode }}
        if dereference(map_instance).erase(key_value) == 0:
            raise KeyError(key)
{% if not fld.Value.IsMessage %}

    def __setitem__(self, {{ fld.Key.CythonType }} key, {{ fld.Value.CythonType }} value):
        cdef {{ fld.CythonType }}* map_instance = self._instance.mutable_{{ fld.Native }}()
        cdef {{ fld.Key.CppType }} key_value = key{{ fld.Key.Encode }}
        dereference(map_instance)[key_value] = value{{ fld.Value.Encode }}
{% endif %}
{% else %}

cdef class __{{ c.Name }}__{{ fld.Name }}__container:

    def __iter__(self):
        cdef int i
        for i in range(self._instance.{{ fld.Native }}_size()):
{% if fld.IsMessage %}
            yield {{ fld.PythonType }}.from_cpp(self._instance.mutable_{{ fld.Native }}(i))
{% else %}
            yield self._instance.{{ fld.Native }}(i){{ fld.Decode }}
{% endif %}

    def __len__(self):
        return self._instance.{{ fld.Native }}_size()

    def __getitem__(self, key):
        cdef int size, index, start, stop, step
        size = self._instance.{{ fld.Native }}_size()
        if isinstance(key, int):
            index = key
            if index < 0:
                index = size + index
            if not 0 <= index < size:
                raise IndexError(f"list index ({key}) out of range")
{% if fld.IsMessage %}
            return {{ fld.PythonType }}.from_cpp(self._instance.mutable_{{ fld.Native }}(index))
{% else %}
            return self._instance.{{ fld.Native }}(index){{ fld.Decode }}
{% endif %}
        start, stop, step = key.indices(size)
        return [self[index] for index in range(start, stop, step)]
{% if fld.IsMessage %}

    def add(self):
        return {{ fld.PythonType }}.from_cpp(self._instance.add_{{ fld.Native }}())
{% else %}

    def add(self, {{ fld.CythonType }} value):
        self._instance.add_{{ fld.Native }}(value{{ fld.Encode }})
{% endif %}
{% endif %}
{% endfor %}

cdef class {{ c.Name }}(Message):

    def __cinit__(self, _init=True):
{% for fld in c.Containers %}
        self.{{ fld.Name }} = __{{ c.Name }}__{{ fld.Name }}__container()
{% endfor %}
        if _init:
            instance = new Cpp{{ c.Name }}()
{% for fld in c.Containers %}
            self.{{ fld.Name }}._instance = instance
{% endfor %}
            self._internal = instance

    cdef Cpp{{ c.Name }}* _message(self):
        return <Cpp{{ c.Name }}*>self._internal

    @staticmethod
    cdef from_cpp(Cpp{{ c.Name }}* other):
        result = {{ c.Name }}(_init=False)
        result._internal = other
{% for fld in c.Containers %}
        result.{{ fld.Name }}._instance = other
{% endfor %}
        return result
{% for fld in c.Properties %}

    @property
    def {{ fld.Name }}(self):
{% if fld.IsMessage %}
        return {{ fld.PythonType }}.from_cpp(self._message().mutable_{{ fld.Native }}())
{% else %}
        return self._message().{{ fld.Native }}(){{ fld.Decode }}
{% endif %}
{% if fld.Settable %}

    @{{ fld.Name }}.setter
    def {{ fld.Name }}(self, {{ fld.CythonType }} value):
        self._message().set_{{ fld.Native }}(value{{ fld.Encode }})
{% endif %}

    @{{ fld.Name }}.deleter
    def {{ fld.Name }}(self):
        self._message().clear_{{ fld.Native }}()
{% endfor %}
{% endfor %}
`)

var pyTemplate = compile(`{% for mod in f.PythonDeps %}
import {{ mod }}
{% endfor %}
{% for e in f.Enums %}
from {{ f.NativeModule }} import {{ e.Name }} as {{ e.Local }}
{% endfor %}
{% for c in f.Classes %}
from {{ f.NativeModule }} import {{ c.Name }} as _Cy_{{ c.Local }}
{% endfor %}
{% for c in f.Classes %}
{% if c.Nested %}


class {{ c.Local }}(_Cy_{{ c.Local }}):
{% for n in c.Nested %}
    {{ n.Attr }} = {{ n.Value }}
{% endfor %}
{% else %}

{{ c.Local }} = _Cy_{{ c.Local }}
{% endif %}
{% endfor %}

{% for c in f.Classes %}
del _Cy_{{ c.Local }}
{% endfor %}
{% for e in f.Enums %}
{% if not e.Exported %}
del {{ e.Local }}
{% endif %}
{% endfor %}
{% for c in f.Classes %}
{% if not c.Exported %}
del {{ c.Local }}
{% endif %}
{% endfor %}

__all__ = (
{% for e in f.Enums %}
{% if e.Exported %}
    '{{ e.Local }}',
{% endif %}
{% endfor %}
{% for c in f.Classes %}
{% if c.Exported %}
    '{{ c.Local }}',
{% endif %}
{% endfor %}
)
`)

var enumTemplate = compile(`from {{ e.NativeModule }} import {{ e.Name }} as {{ e.Local }}

__all__ = ('{{ e.Local }}',)
`)

var setupTemplate = compile(`from setuptools import find_packages
from setuptools import setup
from Cython.Build import cythonize


EXTENSIONS = cythonize(
    [
{% for name in pyx %}
        '{{ name }}',
{% endfor %}
    ],
    language_level="3",
)


setup(
    packages=find_packages(),
    package_data={
        "": ["*.pxd", "py.typed"]
    },
    ext_modules=EXTENSIONS,
    install_requires=["cytobuf"],
    zip_safe=False,
)
`)

var mergedTemplate = compile(`# cython: language_level=3
# distutils: language = c++

{% for name in pyx %}
include "{{ name }}"
{% endfor %}
`)
